package marketplace

import (
	"context"

	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

// Init configures the coordinator once. The registry reference must be the registry
// this coordinator is wired to.
func (c *Coordinator) Init(ctx context.Context, tx state.Tx, admin *auth.Proof, registryRef, paymentToken, treasury market.Principal, feeBps int64) error {
	initialized, err := tx.Has(ctx, adminKey)
	if err != nil {
		return err
	}
	if initialized {
		return market.Errorf(market.KindAlreadyInitialized, "coordinator already initialized")
	}
	if err := c.authority.RequireAuth(admin, admin.Principal()); err != nil {
		return err
	}
	if err := validateFeeBps(feeBps); err != nil {
		return err
	}
	if registryRef != c.registry.Address() {
		return market.Errorf(market.KindInvalidInput, "registry %s is not the wired registry %s", registryRef, c.registry.Address())
	}
	if paymentToken.IsZero() || treasury.IsZero() {
		return market.Errorf(market.KindInvalidInput, "payment token and treasury are required")
	}

	testnet := market.Network(common.NetworkTestnet)
	writes := []struct {
		key   state.Key
		value interface{}
	}{
		{adminKey, admin.Principal()},
		{registryKey, registryRef},
		{paymentTokenKey, paymentToken},
		{activeNetworkKey, testnet},
		{networkPaymentTokenKey(testnet), paymentToken},
		{treasuryKey, treasury},
		{feeBpsKey, feeBps},
		{liquidityShareBpsKey, int64(0)},
	}
	for _, w := range writes {
		if err := tx.Put(ctx, w.key, w.value); err != nil {
			return err
		}
	}
	return nil
}

// RequireAdmin fails Unauthorized unless proof is a root proof of the stored admin.
func (c *Coordinator) RequireAdmin(ctx context.Context, rd state.Reader, proof *auth.Proof) error {
	var admin market.Principal
	found, err := rd.Get(ctx, adminKey, &admin)
	if err != nil {
		return err
	}
	if !found {
		return market.Errorf(market.KindNotInitialized, "coordinator not initialized")
	}
	return c.authority.RequireAuth(proof, admin)
}

func (c *Coordinator) SetFeeConfig(ctx context.Context, tx state.Tx, proof *auth.Proof, treasury market.Principal, feeBps int64) error {
	if err := c.RequireAdmin(ctx, tx, proof); err != nil {
		return err
	}
	if err := validateFeeBps(feeBps); err != nil {
		return err
	}
	if treasury.IsZero() {
		return market.Errorf(market.KindInvalidInput, "treasury is required")
	}
	if err := tx.Put(ctx, treasuryKey, treasury); err != nil {
		return err
	}
	return tx.Put(ctx, feeBpsKey, feeBps)
}

func (c *Coordinator) SetPaymentToken(ctx context.Context, tx state.Tx, proof *auth.Proof, token market.Principal) error {
	if err := c.RequireAdmin(ctx, tx, proof); err != nil {
		return err
	}
	if token.IsZero() {
		return market.Errorf(market.KindInvalidInput, "payment token is required")
	}
	return tx.Put(ctx, paymentTokenKey, token)
}

func (c *Coordinator) SetNetworkPaymentToken(ctx context.Context, tx state.Tx, proof *auth.Proof, network market.Network, token market.Principal) error {
	if err := c.RequireAdmin(ctx, tx, proof); err != nil {
		return err
	}
	if !network.Supported() {
		return market.Errorf(market.KindUnsupportedNetwork, "unsupported network %q", network)
	}
	if token.IsZero() {
		return market.Errorf(market.KindInvalidInput, "payment token is required")
	}
	return tx.Put(ctx, networkPaymentTokenKey(network), token)
}

func (c *Coordinator) SetActiveNetwork(ctx context.Context, tx state.Tx, proof *auth.Proof, network market.Network) error {
	if err := c.RequireAdmin(ctx, tx, proof); err != nil {
		return err
	}
	if !network.Supported() {
		return market.Errorf(market.KindUnsupportedNetwork, "unsupported network %q", network)
	}
	return tx.Put(ctx, activeNetworkKey, network)
}

func (c *Coordinator) GetActiveNetwork(ctx context.Context, rd state.Reader) (market.Network, bool, error) {
	var network market.Network
	found, err := rd.Get(ctx, activeNetworkKey, &network)
	if err != nil || !found {
		return "", false, err
	}
	return network, true, nil
}

func (c *Coordinator) GetNetworkPaymentToken(ctx context.Context, rd state.Reader, network market.Network) (market.Principal, bool, error) {
	var token market.Principal
	found, err := rd.Get(ctx, networkPaymentTokenKey(network), &token)
	if err != nil || !found {
		return "", false, err
	}
	return token, true, nil
}

// SetLiquidityConfig routes part of every fee to destination. A nil destination turns
// splitting off and resets the share to zero.
func (c *Coordinator) SetLiquidityConfig(ctx context.Context, tx state.Tx, proof *auth.Proof, destination *market.Principal, shareBps int64) error {
	if err := c.RequireAdmin(ctx, tx, proof); err != nil {
		return err
	}
	if destination == nil {
		if err := tx.Delete(ctx, liquidityDestinationKey); err != nil {
			return err
		}
		return tx.Put(ctx, liquidityShareBpsKey, int64(0))
	}
	if shareBps < 0 || shareBps > common.BpsDenominator {
		return market.Errorf(market.KindInvalidInput, "liquidity share %d outside [0,%d]", shareBps, common.BpsDenominator)
	}
	if destination.IsZero() {
		return market.Errorf(market.KindInvalidInput, "liquidity destination is empty")
	}
	if err := tx.Put(ctx, liquidityDestinationKey, *destination); err != nil {
		return err
	}
	return tx.Put(ctx, liquidityShareBpsKey, shareBps)
}

// PaymentToken resolves the token purchases settle in: the token mapped to the active
// network, else the default payment token.
func (c *Coordinator) PaymentToken(ctx context.Context, rd state.Reader) (market.Principal, error) {
	network, ok, err := c.GetActiveNetwork(ctx, rd)
	if err != nil {
		return "", err
	}
	if ok {
		token, ok, err := c.GetNetworkPaymentToken(ctx, rd, network)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
	}
	var token market.Principal
	found, err := rd.Get(ctx, paymentTokenKey, &token)
	if err != nil {
		return "", err
	}
	if !found {
		return "", market.Errorf(market.KindNotInitialized, "payment token missing")
	}
	return token, nil
}

// Settings is a snapshot of the coordinator configuration.
type Settings struct {
	Admin                market.Principal  `json:"admin"`
	Registry             market.Principal  `json:"registry"`
	PaymentToken         market.Principal  `json:"payment_token"`
	ActiveNetwork        market.Network    `json:"active_network"`
	Treasury             market.Principal  `json:"treasury"`
	FeeBps               int64             `json:"fee_bps"`
	LiquidityDestination *market.Principal `json:"liquidity_destination,omitempty"`
	LiquidityShareBps    int64             `json:"liquidity_share_bps"`
}

func (c *Coordinator) Settings(ctx context.Context, rd state.Reader) (Settings, error) {
	s := Settings{}
	found, err := rd.Get(ctx, adminKey, &s.Admin)
	if err != nil {
		return s, err
	}
	if !found {
		return s, market.Errorf(market.KindNotInitialized, "coordinator not initialized")
	}
	for key, dst := range map[state.Key]interface{}{
		registryKey:          &s.Registry,
		activeNetworkKey:     &s.ActiveNetwork,
		treasuryKey:          &s.Treasury,
		feeBpsKey:            &s.FeeBps,
		liquidityShareBpsKey: &s.LiquidityShareBps,
	} {
		if _, err := rd.Get(ctx, key, dst); err != nil {
			return s, err
		}
	}
	if s.PaymentToken, err = c.PaymentToken(ctx, rd); err != nil {
		return s, err
	}
	if s.LiquidityDestination, err = c.liquidityDestination(ctx, rd); err != nil {
		return s, err
	}
	return s, nil
}

func (c *Coordinator) liquidityDestination(ctx context.Context, rd state.Reader) (*market.Principal, error) {
	var destination market.Principal
	found, err := rd.Get(ctx, liquidityDestinationKey, &destination)
	if err != nil || !found {
		return nil, err
	}
	return &destination, nil
}

func (c *Coordinator) feeBps(ctx context.Context, rd state.Reader) (int64, error) {
	var bps int64
	_, err := rd.Get(ctx, feeBpsKey, &bps)
	return bps, err
}

func (c *Coordinator) registryRef(ctx context.Context, rd state.Reader) error {
	var ref market.Principal
	found, err := rd.Get(ctx, registryKey, &ref)
	if err != nil {
		return err
	}
	if !found {
		return market.Errorf(market.KindNotInitialized, "registry reference missing")
	}
	if ref != c.registry.Address() {
		return market.Errorf(market.KindNotInitialized, "configured registry %s is not wired", ref)
	}
	return nil
}

func validateFeeBps(bps int64) error {
	if bps < 0 || bps > common.MaxFeeBps {
		return market.Errorf(market.KindInvalidInput, "fee bps %d outside [0,%d]", bps, common.MaxFeeBps)
	}
	return nil
}
