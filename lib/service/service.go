package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/host"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/marketplace"
	"github.com/terracapital/marketplace/lib/payment"
	"github.com/terracapital/marketplace/lib/registry"
	"github.com/terracapital/marketplace/lib/state"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type MarketService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	Authority      *auth.Authority
	Runtime        *host.Runtime
	Registry       *registry.Registry
	Coordinator    *marketplace.Coordinator
	Ledger         *payment.Ledger
	PurchasePubSub *Pubsub
}

// NewMarketService wires the registry, the coordinator and the payment ledger over
// store. db backs the purchase journal and may be the same database as store.
func NewMarketService(c *Config, db *bun.DB, store state.Store, logger *lecho.Logger) (*MarketService, error) {
	authority := auth.NewAuthority(c.JWTSecret, time.Duration(c.JWTAccessTokenExpiry)*time.Second, c.LoginMaxSkew)

	// the coordinator acts on its own authority when it delegates sale grants
	token, err := authority.Issue(market.Principal(c.Market.CoordinatorAddress))
	if err != nil {
		return nil, err
	}
	self, err := authority.Verify(token)
	if err != nil {
		return nil, err
	}

	ledger := payment.NewLedger(authority, market.Principal(c.Market.PlatformAdmin))
	reg := registry.New(market.Principal(c.Market.RegistryAddress), authority)
	return &MarketService{
		Config:         c,
		DB:             db,
		Logger:         logger,
		Authority:      authority,
		Runtime:        host.NewRuntime(store, nil),
		Registry:       reg,
		Coordinator:    marketplace.New(self, authority, reg, ledger),
		Ledger:         ledger,
		PurchasePubSub: NewPubsub(),
	}, nil
}

// Login verifies a wallet signature and returns an access token for the wallet.
func (svc *MarketService) Login(principal market.Principal, timestamp int64, signature string) (string, error) {
	if err := svc.Authority.VerifyLogin(principal, timestamp, signature); err != nil {
		return "", err
	}
	return svc.Authority.Issue(principal)
}

func (svc *MarketService) Authenticate(token string) (*auth.Proof, error) {
	return svc.Authority.Verify(token)
}

// adminProof lets the service act as the platform admin for bootstrap.
func (svc *MarketService) adminProof() (*auth.Proof, error) {
	token, err := svc.Authority.Issue(market.Principal(svc.Config.Market.PlatformAdmin))
	if err != nil {
		return nil, err
	}
	return svc.Authority.Verify(token)
}

func (svc *MarketService) CreateAsset(ctx context.Context, proof *auth.Proof, category, title string, pricePerToken, totalTokens decimal.Decimal) (market.Asset, error) {
	var asset market.Asset
	err := svc.Runtime.Invoke(ctx, "create_asset", func(ctx context.Context, tx state.Tx) error {
		id, err := svc.Registry.CreateAsset(ctx, tx, proof, proof.Principal(), category, title, pricePerToken, totalTokens)
		if err != nil {
			return err
		}
		asset, err = svc.Registry.GetAsset(ctx, tx, id)
		return err
	})
	return asset, err
}

func (svc *MarketService) GetAsset(ctx context.Context, id uint64) (market.Asset, error) {
	var asset market.Asset
	err := svc.Runtime.View(ctx, "get_asset", func(ctx context.Context, rd state.Reader) error {
		var err error
		asset, err = svc.Registry.GetAsset(ctx, rd, id)
		return err
	})
	return asset, err
}

func (svc *MarketService) ListAssets(ctx context.Context, fromID uint64, limit uint32) ([]market.Asset, error) {
	var assets []market.Asset
	err := svc.Runtime.View(ctx, "list_assets", func(ctx context.Context, rd state.Reader) error {
		var err error
		assets, err = svc.Registry.ListAssets(ctx, rd, fromID, limit)
		return err
	})
	return assets, err
}

func (svc *MarketService) BuyerBalance(ctx context.Context, assetID uint64, buyer market.Principal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := svc.Runtime.View(ctx, "get_buyer_balance", func(ctx context.Context, rd state.Reader) error {
		var err error
		balance, err = svc.Registry.BuyerBalance(ctx, rd, assetID, buyer)
		return err
	})
	return balance, err
}

func (svc *MarketService) SetAssetActive(ctx context.Context, proof *auth.Proof, assetID uint64, active bool) (market.Asset, error) {
	var asset market.Asset
	err := svc.Runtime.Invoke(ctx, "set_asset_active", func(ctx context.Context, tx state.Tx) error {
		if err := svc.Registry.SetAssetActive(ctx, tx, proof, proof.Principal(), assetID, active); err != nil {
			return err
		}
		var err error
		asset, err = svc.Registry.GetAsset(ctx, tx, assetID)
		return err
	})
	return asset, err
}

func (svc *MarketService) PreviewPurchase(ctx context.Context, buyer market.Principal, assetID uint64, quantity decimal.Decimal) (market.PurchaseReceipt, error) {
	var receipt market.PurchaseReceipt
	err := svc.Runtime.View(ctx, "preview_purchase", func(ctx context.Context, rd state.Reader) error {
		var err error
		receipt, err = svc.Coordinator.PreviewPurchase(ctx, rd, buyer, assetID, quantity)
		return err
	})
	return receipt, err
}

func (svc *MarketService) PaymentBalance(ctx context.Context, who market.Principal) (market.Principal, decimal.Decimal, error) {
	var token market.Principal
	var balance decimal.Decimal
	err := svc.Runtime.View(ctx, "payment_balance", func(ctx context.Context, rd state.Reader) error {
		var err error
		if token, err = svc.Coordinator.PaymentToken(ctx, rd); err != nil {
			return err
		}
		balance, err = svc.Ledger.Balance(ctx, rd, token, who)
		return err
	})
	return token, balance, err
}

func (svc *MarketService) ActiveNetwork(ctx context.Context) (market.Network, error) {
	var network market.Network
	err := svc.Runtime.View(ctx, "get_active_network", func(ctx context.Context, rd state.Reader) error {
		n, ok, err := svc.Coordinator.GetActiveNetwork(ctx, rd)
		if err != nil {
			return err
		}
		if !ok {
			return market.Errorf(market.KindNotFound, "no active network")
		}
		network = n
		return nil
	})
	return network, err
}

func (svc *MarketService) NetworkPaymentToken(ctx context.Context, network market.Network) (market.Principal, error) {
	var token market.Principal
	err := svc.Runtime.View(ctx, "get_network_payment_token", func(ctx context.Context, rd state.Reader) error {
		t, ok, err := svc.Coordinator.GetNetworkPaymentToken(ctx, rd, network)
		if err != nil {
			return err
		}
		if !ok {
			return market.Errorf(market.KindNotFound, "no payment token for network %q", network)
		}
		token = t
		return nil
	})
	return token, err
}
