package service

import (
	"context"
	"errors"

	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

// Bootstrap initializes the registry and the coordinator from the configuration and
// registers the coordinator with the registry. Steps already done by a previous start
// are skipped, so it is safe to run on every start.
func (svc *MarketService) Bootstrap(ctx context.Context) error {
	admin, err := svc.adminProof()
	if err != nil {
		return err
	}
	m := svc.Config.Market

	err = svc.Runtime.Invoke(ctx, "registry_init", func(ctx context.Context, tx state.Tx) error {
		return svc.Registry.Init(ctx, tx, admin)
	})
	if err != nil && !errors.Is(err, market.ErrAlreadyInitialized) {
		return err
	}

	err = svc.Runtime.Invoke(ctx, "registry_set_coordinator", func(ctx context.Context, tx state.Tx) error {
		current, ok, err := svc.Registry.Coordinator(ctx, tx)
		if err != nil || (ok && current == svc.Coordinator.Address()) {
			return err
		}
		return svc.Registry.SetCoordinator(ctx, tx, admin, svc.Coordinator.Address())
	})
	if err != nil {
		return err
	}

	err = svc.Runtime.Invoke(ctx, "coordinator_init", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.Init(ctx, tx, admin,
			market.Principal(m.RegistryAddress),
			market.Principal(m.PaymentToken),
			market.Principal(m.Treasury),
			m.FeeBps,
		)
	})
	if errors.Is(err, market.ErrAlreadyInitialized) {
		svc.Logger.Infof("Marketplace already initialized, registry %s coordinator %s", m.RegistryAddress, m.CoordinatorAddress)
		return nil
	}
	if err != nil {
		return err
	}
	svc.Logger.Infof("Marketplace initialized, registry %s coordinator %s fee %d bps", m.RegistryAddress, m.CoordinatorAddress, m.FeeBps)
	return nil
}
