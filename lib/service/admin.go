package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/marketplace"
	"github.com/terracapital/marketplace/lib/state"
)

func (svc *MarketService) SetFeeConfig(ctx context.Context, proof *auth.Proof, treasury market.Principal, feeBps int64) error {
	return svc.Runtime.Invoke(ctx, "set_fee_config", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.SetFeeConfig(ctx, tx, proof, treasury, feeBps)
	})
}

func (svc *MarketService) SetPaymentToken(ctx context.Context, proof *auth.Proof, token market.Principal) error {
	return svc.Runtime.Invoke(ctx, "set_payment_token", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.SetPaymentToken(ctx, tx, proof, token)
	})
}

func (svc *MarketService) SetNetworkPaymentToken(ctx context.Context, proof *auth.Proof, network market.Network, token market.Principal) error {
	return svc.Runtime.Invoke(ctx, "set_network_payment_token", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.SetNetworkPaymentToken(ctx, tx, proof, network, token)
	})
}

func (svc *MarketService) SetActiveNetwork(ctx context.Context, proof *auth.Proof, network market.Network) error {
	return svc.Runtime.Invoke(ctx, "set_active_network", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.SetActiveNetwork(ctx, tx, proof, network)
	})
}

func (svc *MarketService) SetLiquidityConfig(ctx context.Context, proof *auth.Proof, destination *market.Principal, shareBps int64) error {
	return svc.Runtime.Invoke(ctx, "set_liquidity_config", func(ctx context.Context, tx state.Tx) error {
		return svc.Coordinator.SetLiquidityConfig(ctx, tx, proof, destination, shareBps)
	})
}

// Settings exposes the coordinator configuration to the platform admin only.
func (svc *MarketService) Settings(ctx context.Context, proof *auth.Proof) (marketplace.Settings, error) {
	var settings marketplace.Settings
	err := svc.Runtime.View(ctx, "settings", func(ctx context.Context, rd state.Reader) error {
		if err := svc.Coordinator.RequireAdmin(ctx, rd, proof); err != nil {
			return err
		}
		var err error
		settings, err = svc.Coordinator.Settings(ctx, rd)
		return err
	})
	return settings, err
}

// PaymentToken is the token purchases currently settle in.
func (svc *MarketService) PaymentToken(ctx context.Context) (market.Principal, error) {
	var token market.Principal
	err := svc.Runtime.View(ctx, "payment_token", func(ctx context.Context, rd state.Reader) error {
		var err error
		token, err = svc.Coordinator.PaymentToken(ctx, rd)
		return err
	})
	return token, err
}

// Mint funds to with payment tokens of the currently active payment token. Only the
// platform admin can mint.
func (svc *MarketService) Mint(ctx context.Context, proof *auth.Proof, to market.Principal, amount decimal.Decimal) (market.Principal, decimal.Decimal, error) {
	var token market.Principal
	var balance decimal.Decimal
	err := svc.Runtime.Invoke(ctx, "mint", func(ctx context.Context, tx state.Tx) error {
		var err error
		if token, err = svc.Coordinator.PaymentToken(ctx, tx); err != nil {
			return err
		}
		if err = svc.Ledger.Mint(ctx, tx, proof, token, to, amount); err != nil {
			return err
		}
		balance, err = svc.Ledger.Balance(ctx, tx, token, to)
		return err
	})
	return token, balance, err
}
