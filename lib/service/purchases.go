package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

// BuyTokens runs a coordinated purchase for the holder of proof. The receipt is
// journaled and published once the invocation committed.
func (svc *MarketService) BuyTokens(ctx context.Context, proof *auth.Proof, assetID uint64, quantity decimal.Decimal) (market.PurchaseReceipt, error) {
	var receipt market.PurchaseReceipt
	var asset market.Asset
	var token market.Principal
	var network market.Network
	err := svc.Runtime.Invoke(ctx, "buy_tokens", func(ctx context.Context, tx state.Tx) error {
		var err error
		receipt, err = svc.Coordinator.BuyTokens(ctx, tx, proof, proof.Principal(), assetID, quantity)
		if err != nil {
			return err
		}
		if asset, err = svc.Registry.GetAsset(ctx, tx, assetID); err != nil {
			return err
		}
		if token, err = svc.Coordinator.PaymentToken(ctx, tx); err != nil {
			return err
		}
		network, _, err = svc.Coordinator.GetActiveNetwork(ctx, tx)
		return err
	})
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	svc.recordPurchase(ctx, &models.Purchase{
		AssetID:       receipt.AssetID,
		Seller:        receipt.Seller.String(),
		Buyer:         receipt.Buyer.String(),
		Quantity:      receipt.Quantity,
		PricePerToken: asset.PricePerToken,
		TotalPaid:     receipt.TotalPaid,
		FeePaid:       receipt.FeePaid,
		SellerAmount:  receipt.SellerAmount,
		PaymentToken:  token.String(),
		Network:       string(network),
		Source:        common.PurchaseSourceCoordinator,
	})
	return receipt, nil
}

// DirectBuy is the registry's own purchase path. It only succeeds while no coordinator
// is registered, which never holds after Bootstrap.
func (svc *MarketService) DirectBuy(ctx context.Context, proof *auth.Proof, assetID uint64, quantity decimal.Decimal) (market.PurchaseReceipt, error) {
	var total decimal.Decimal
	var asset market.Asset
	err := svc.Runtime.Invoke(ctx, "registry_buy_tokens", func(ctx context.Context, tx state.Tx) error {
		var err error
		if total, err = svc.Registry.BuyTokens(ctx, tx, proof, proof.Principal(), assetID, quantity); err != nil {
			return err
		}
		asset, err = svc.Registry.GetAsset(ctx, tx, assetID)
		return err
	})
	if err != nil {
		return market.PurchaseReceipt{}, err
	}
	receipt := market.PurchaseReceipt{
		AssetID:      assetID,
		Seller:       asset.Seller,
		Buyer:        proof.Principal(),
		Quantity:     quantity,
		TotalPaid:    total,
		FeePaid:      decimal.Zero,
		SellerAmount: total,
	}
	svc.recordPurchase(ctx, &models.Purchase{
		AssetID:       assetID,
		Seller:        asset.Seller.String(),
		Buyer:         proof.Principal().String(),
		Quantity:      quantity,
		PricePerToken: asset.PricePerToken,
		TotalPaid:     total,
		FeePaid:       decimal.Zero,
		SellerAmount:  total,
		Source:        common.PurchaseSourceRegistry,
	})
	return receipt, nil
}

// recordPurchase journals a committed purchase and publishes it. The purchase already
// happened, so failures are only logged.
func (svc *MarketService) recordPurchase(ctx context.Context, purchase *models.Purchase) {
	purchase.ID = uuid.NewString()
	purchase.State = common.PurchaseStateCompleted
	if svc.DB != nil {
		if _, err := svc.DB.NewInsert().Model(purchase).Exec(ctx); err != nil {
			svc.Logger.Errorf("Failed to journal purchase of asset %d by %s: %v", purchase.AssetID, purchase.Buyer, err)
		}
	}
	if dropped := svc.PurchasePubSub.Publish(common.PurchaseTopic, *purchase); dropped > 0 {
		svc.Logger.Warnf("Purchase %s not delivered to %d subscribers", purchase.ID, dropped)
	}
}

// ListPurchases returns the journaled purchases of buyer, newest first.
func (svc *MarketService) ListPurchases(ctx context.Context, buyer market.Principal, limit, offset int) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	err := svc.DB.NewSelect().
		Model(&purchases).
		Where("buyer = ?", buyer.String()).
		Order("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return purchases, err
}
