// Package marketplace is the coordinator: it prices purchases, collects the payment
// legs and asks the registry to execute the sale under a one-call grant.
package marketplace

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/payment"
	"github.com/terracapital/marketplace/lib/registry"
	"github.com/terracapital/marketplace/lib/state"
)

// RegistryClient is the part of the registry the coordinator calls.
type RegistryClient interface {
	Address() market.Principal
	GetAsset(ctx context.Context, rd state.Reader, id uint64) (market.Asset, error)
	ExecuteSale(ctx context.Context, tx state.Tx, proof *auth.Proof, seller, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (decimal.Decimal, error)
}

type Coordinator struct {
	self      *auth.Proof
	authority *auth.Authority
	registry  RegistryClient
	gateway   payment.Gateway
}

// New wires a coordinator. self is the coordinator's own root proof; it is only used
// to delegate sale grants.
func New(self *auth.Proof, authority *auth.Authority, registry RegistryClient, gateway payment.Gateway) *Coordinator {
	return &Coordinator{self: self, authority: authority, registry: registry, gateway: gateway}
}

func (c *Coordinator) Address() market.Principal {
	return c.self.Principal()
}

// PreviewPurchase prices a purchase against the current asset without changing anything.
func (c *Coordinator) PreviewPurchase(ctx context.Context, rd state.Reader, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (market.PurchaseReceipt, error) {
	asset, err := c.registry.GetAsset(ctx, rd, assetID)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	if err := checkPurchasable(asset, quantity); err != nil {
		return market.PurchaseReceipt{}, err
	}
	feeBps, err := c.feeBps(ctx, rd)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	return quote(asset, buyer, quantity, feeBps)
}

// BuyTokens pays the seller and the fee legs from the buyer, then executes the sale on
// the registry. Everything runs in tx: any failure leaves no leg applied.
func (c *Coordinator) BuyTokens(ctx context.Context, tx state.Tx, proof *auth.Proof, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (market.PurchaseReceipt, error) {
	if err := c.authority.RequireAuth(proof, buyer); err != nil {
		return market.PurchaseReceipt{}, err
	}
	if err := validateQuantity(quantity); err != nil {
		return market.PurchaseReceipt{}, err
	}
	if err := c.registryRef(ctx, tx); err != nil {
		return market.PurchaseReceipt{}, err
	}
	asset, err := c.registry.GetAsset(ctx, tx, assetID)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	if err := checkPurchasable(asset, quantity); err != nil {
		return market.PurchaseReceipt{}, err
	}
	feeBps, err := c.feeBps(ctx, tx)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	receipt, err := quote(asset, buyer, quantity, feeBps)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}

	token, err := c.PaymentToken(ctx, tx)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	if receipt.SellerAmount.IsPositive() {
		if err := c.gateway.Transfer(ctx, tx, token, proof, asset.Seller, receipt.SellerAmount); err != nil {
			return market.PurchaseReceipt{}, err
		}
	}
	if err := c.payFee(ctx, tx, token, proof, receipt.FeePaid); err != nil {
		return market.PurchaseReceipt{}, err
	}

	grant, err := c.authority.Delegate(c.self, registry.SaleInvocation(c.registry.Address(), asset.Seller, buyer, assetID, quantity))
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	if _, err := c.registry.ExecuteSale(ctx, tx, grant, asset.Seller, buyer, assetID, quantity); err != nil {
		return market.PurchaseReceipt{}, err
	}
	return receipt, nil
}

// payFee sends the fee to the treasury, minus the liquidity share when a liquidity
// destination is configured. Zero legs are skipped.
func (c *Coordinator) payFee(ctx context.Context, tx state.Tx, token market.Principal, proof *auth.Proof, fee decimal.Decimal) error {
	if !fee.IsPositive() {
		return nil
	}
	var treasury market.Principal
	found, err := tx.Get(ctx, treasuryKey, &treasury)
	if err != nil {
		return err
	}
	if !found {
		return market.Errorf(market.KindNotInitialized, "treasury missing")
	}
	destination, err := c.liquidityDestination(ctx, tx)
	if err != nil {
		return err
	}
	if destination == nil {
		return c.gateway.Transfer(ctx, tx, token, proof, treasury, fee)
	}

	var shareBps int64
	if _, err := tx.Get(ctx, liquidityShareBpsKey, &shareBps); err != nil {
		return err
	}
	liquidityAmount, err := market.ApplyBps(fee, shareBps)
	if err != nil {
		return err
	}
	treasuryAmount, err := market.Debit(fee, liquidityAmount)
	if err != nil {
		return err
	}
	if treasuryAmount.IsPositive() {
		if err := c.gateway.Transfer(ctx, tx, token, proof, treasury, treasuryAmount); err != nil {
			return err
		}
	}
	if liquidityAmount.IsPositive() {
		if err := c.gateway.Transfer(ctx, tx, token, proof, *destination, liquidityAmount); err != nil {
			return err
		}
	}
	return nil
}

func quote(asset market.Asset, buyer market.Principal, quantity decimal.Decimal, feeBps int64) (market.PurchaseReceipt, error) {
	total, err := market.CheckedMul(asset.PricePerToken, quantity)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	fee, err := market.ApplyBps(total, feeBps)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	sellerAmount, err := market.Debit(total, fee)
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	return market.PurchaseReceipt{
		AssetID:      asset.ID,
		Seller:       asset.Seller,
		Buyer:        buyer,
		Quantity:     quantity,
		TotalPaid:    total,
		FeePaid:      fee,
		SellerAmount: sellerAmount,
	}, nil
}

func validateQuantity(quantity decimal.Decimal) error {
	if err := market.ValidateAmount(quantity); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return market.Errorf(market.KindInvalidInput, "quantity must be > 0, got %s", quantity)
	}
	return nil
}

func checkPurchasable(asset market.Asset, quantity decimal.Decimal) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if !asset.Active {
		return market.Errorf(market.KindInactiveAsset, "asset %d is not active", asset.ID)
	}
	if asset.AvailableTokens.LessThan(quantity) {
		return market.Errorf(market.KindInsufficientAvailability, "asset %d has %s tokens available, %s requested", asset.ID, asset.AvailableTokens, quantity)
	}
	return nil
}

var _ RegistryClient = (*registry.Registry)(nil)
