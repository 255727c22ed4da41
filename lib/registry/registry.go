// Package registry owns assets and buyer balances. Once a coordinator is registered,
// sales only happen through ExecuteSale under the coordinator's grant.
package registry

import (
	"context"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

type Registry struct {
	address   market.Principal
	authority *auth.Authority
}

func New(address market.Principal, authority *auth.Authority) *Registry {
	return &Registry{address: address, authority: authority}
}

// Address is the principal the registry is known by. Grants for ExecuteSale name it
// as their contract.
func (r *Registry) Address() market.Principal {
	return r.address
}

// SaleInvocation describes the one ExecuteSale call a coordinator grant covers.
func SaleInvocation(registry, seller, buyer market.Principal, assetID uint64, quantity decimal.Decimal) auth.Invocation {
	return auth.Invocation{
		Contract: registry,
		Function: common.FnExecuteSale,
		Args:     []string{seller.String(), buyer.String(), strconv.FormatUint(assetID, 10), quantity.String()},
	}
}

func (r *Registry) Init(ctx context.Context, tx state.Tx, admin *auth.Proof) error {
	initialized, err := tx.Has(ctx, adminKey)
	if err != nil {
		return err
	}
	if initialized {
		return market.Errorf(market.KindAlreadyInitialized, "registry already initialized")
	}
	if err := r.authority.RequireAuth(admin, admin.Principal()); err != nil {
		return err
	}
	if err := tx.Put(ctx, adminKey, admin.Principal()); err != nil {
		return err
	}
	return tx.Put(ctx, nextAssetIDKey, uint64(common.FirstAssetID))
}

func (r *Registry) Admin(ctx context.Context, rd state.Reader) (market.Principal, error) {
	var admin market.Principal
	found, err := rd.Get(ctx, adminKey, &admin)
	if err != nil {
		return "", err
	}
	if !found {
		return "", market.Errorf(market.KindNotInitialized, "registry not initialized")
	}
	return admin, nil
}

// SetCoordinator registers the only principal allowed to call ExecuteSale. From then
// on the direct BuyTokens path is closed.
func (r *Registry) SetCoordinator(ctx context.Context, tx state.Tx, admin *auth.Proof, coordinator market.Principal) error {
	stored, err := r.Admin(ctx, tx)
	if err != nil {
		return err
	}
	if err := r.authority.RequireAuth(admin, stored); err != nil {
		return err
	}
	if coordinator.IsZero() {
		return market.Errorf(market.KindInvalidInput, "coordinator address is required")
	}
	return tx.Put(ctx, coordinatorKey, coordinator)
}

// Coordinator returns the registered coordinator, if any.
func (r *Registry) Coordinator(ctx context.Context, rd state.Reader) (market.Principal, bool, error) {
	var coordinator market.Principal
	found, err := rd.Get(ctx, coordinatorKey, &coordinator)
	if err != nil || !found {
		return "", false, err
	}
	return coordinator, true, nil
}

func (r *Registry) NextAssetID(ctx context.Context, rd state.Reader) (uint64, error) {
	next := uint64(common.FirstAssetID)
	if _, err := rd.Get(ctx, nextAssetIDKey, &next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *Registry) CreateAsset(ctx context.Context, tx state.Tx, proof *auth.Proof, seller market.Principal, category, title string, pricePerToken, totalTokens decimal.Decimal) (uint64, error) {
	if err := r.authority.RequireAuth(proof, seller); err != nil {
		return 0, err
	}
	if err := validatePositive("price_per_token", pricePerToken); err != nil {
		return 0, err
	}
	if err := validatePositive("total_tokens", totalTokens); err != nil {
		return 0, err
	}
	if err := market.ValidateText("category", category); err != nil {
		return 0, err
	}
	if err := market.ValidateText("title", title); err != nil {
		return 0, err
	}

	id, err := r.NextAssetID(ctx, tx)
	if err != nil {
		return 0, err
	}
	if id == math.MaxUint64 {
		return 0, market.Errorf(market.KindArithmeticOverflow, "asset id counter exhausted")
	}
	asset := market.Asset{
		ID:              id,
		Seller:          seller,
		Category:        category,
		Title:           title,
		PricePerToken:   pricePerToken,
		TotalTokens:     totalTokens,
		AvailableTokens: totalTokens,
		Active:          true,
	}
	if err := tx.Put(ctx, assetKey(id), asset); err != nil {
		return 0, err
	}
	if err := tx.Put(ctx, nextAssetIDKey, id+1); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Registry) GetAsset(ctx context.Context, rd state.Reader, id uint64) (market.Asset, error) {
	var asset market.Asset
	found, err := rd.Get(ctx, assetKey(id), &asset)
	if err != nil {
		return market.Asset{}, err
	}
	if !found {
		return market.Asset{}, market.Errorf(market.KindNotFound, "asset %d not found", id)
	}
	return asset, nil
}

// ListAssets walks ids in [fromID, next id) and returns at most min(limit, 50) assets
// in id order. Missing ids are skipped.
func (r *Registry) ListAssets(ctx context.Context, rd state.Reader, fromID uint64, limit uint32) ([]market.Asset, error) {
	max := limit
	if max > common.MaxListLimit {
		max = common.MaxListLimit
	}
	next, err := r.NextAssetID(ctx, rd)
	if err != nil {
		return nil, err
	}
	assets := make([]market.Asset, 0, max)
	for current := fromID; current < next && uint32(len(assets)) < max; current++ {
		var asset market.Asset
		found, err := rd.Get(ctx, assetKey(current), &asset)
		if err != nil {
			return nil, err
		}
		if found {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (r *Registry) BuyerBalance(ctx context.Context, rd state.Reader, assetID uint64, buyer market.Principal) (decimal.Decimal, error) {
	balance := decimal.Zero
	if _, err := rd.Get(ctx, balanceKey(assetID, buyer), &balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *Registry) SetAssetActive(ctx context.Context, tx state.Tx, proof *auth.Proof, seller market.Principal, assetID uint64, active bool) error {
	if err := r.authority.RequireAuth(proof, seller); err != nil {
		return err
	}
	asset, err := r.GetAsset(ctx, tx, assetID)
	if err != nil {
		return err
	}
	if asset.Seller != seller {
		return market.Errorf(market.KindUnauthorized, "only the seller can update asset %d", assetID)
	}
	asset.Active = active
	return tx.Put(ctx, assetKey(assetID), asset)
}

// BuyTokens is the direct purchase path. It only works while no coordinator is
// registered and moves no payment.
func (r *Registry) BuyTokens(ctx context.Context, tx state.Tx, proof *auth.Proof, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (decimal.Decimal, error) {
	_, redirect, err := r.Coordinator(ctx, tx)
	if err != nil {
		return decimal.Zero, err
	}
	if redirect {
		return decimal.Zero, market.Errorf(market.KindRedirectRequired, "purchases go through the marketplace coordinator")
	}
	if err := r.authority.RequireAuth(proof, buyer); err != nil {
		return decimal.Zero, err
	}
	return r.applySale(ctx, tx, buyer, assetID, quantity, nil)
}

// ExecuteSale is the coordinator-only entry point. proof must be the coordinator's
// grant for exactly this call.
func (r *Registry) ExecuteSale(ctx context.Context, tx state.Tx, proof *auth.Proof, seller, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (decimal.Decimal, error) {
	coordinator, ok, err := r.Coordinator(ctx, tx)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, market.Errorf(market.KindUnauthorized, "no coordinator registered")
	}
	inv := SaleInvocation(r.address, seller, buyer, assetID, quantity)
	if err := r.authority.RequireInvocation(proof, coordinator, inv); err != nil {
		return decimal.Zero, err
	}
	return r.applySale(ctx, tx, buyer, assetID, quantity, func(asset market.Asset) error {
		if asset.Seller != seller {
			return market.Errorf(market.KindSellerMismatch, "asset %d is sold by %s, not %s", assetID, asset.Seller, seller)
		}
		return nil
	})
}

// applySale is the single read-modify-write behind both purchase paths: available
// tokens go down and the buyer balance goes up by quantity, or nothing changes.
func (r *Registry) applySale(ctx context.Context, tx state.Tx, buyer market.Principal, assetID uint64, quantity decimal.Decimal, check func(market.Asset) error) (decimal.Decimal, error) {
	if err := validatePositive("quantity", quantity); err != nil {
		return decimal.Zero, err
	}
	asset, err := r.GetAsset(ctx, tx, assetID)
	if err != nil {
		return decimal.Zero, err
	}
	if check != nil {
		if err := check(asset); err != nil {
			return decimal.Zero, err
		}
	}
	if !asset.Active {
		return decimal.Zero, market.Errorf(market.KindInactiveAsset, "asset %d is not active", assetID)
	}
	if asset.AvailableTokens.LessThan(quantity) {
		return decimal.Zero, market.Errorf(market.KindInsufficientAvailability, "asset %d has %s tokens available, %s requested", assetID, asset.AvailableTokens, quantity)
	}

	total, err := market.CheckedMul(asset.PricePerToken, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	asset.AvailableTokens, err = market.Debit(asset.AvailableTokens, quantity)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := r.BuyerBalance(ctx, tx, assetID, buyer)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err = market.CheckedAdd(balance, quantity)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Put(ctx, assetKey(assetID), asset); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Put(ctx, balanceKey(assetID, buyer), balance); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func validatePositive(field string, v decimal.Decimal) error {
	if err := market.ValidateAmount(v); err != nil {
		return err
	}
	if !v.IsPositive() {
		return market.Errorf(market.KindInvalidInput, "%s must be > 0, got %s", field, v)
	}
	return nil
}
