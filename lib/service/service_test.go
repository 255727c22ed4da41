package service

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db/migrations"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state/bunstore"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"
	"github.com/ziflex/lecho/v3"
	_ "modernc.org/sqlite"
)

func testConfig() *Config {
	return &Config{
		JWTSecret:            []byte("SECRET"),
		JWTAccessTokenExpiry: 3600,
		LoginMaxSkew:         time.Minute,
		Market: MarketConfig{
			PlatformAdmin:      "platform_admin",
			RegistryAddress:    "terra_tokenization",
			CoordinatorAddress: "terra_marketplace",
			PaymentToken:       "usdc_testnet",
			Treasury:           "treasury",
			FeeBps:             250,
		},
	}
}

type MarketServiceTestSuite struct {
	suite.Suite
	svc *MarketService
	db  *bun.DB
}

func (suite *MarketServiceTestSuite) SetupTest() {
	sqldb, err := sql.Open("sqlite", "file:service_test?mode=memory&cache=shared")
	suite.Require().NoError(err)
	sqldb.SetMaxOpenConns(1)
	suite.db = bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	migrator := migrate.NewMigrator(suite.db, migrations.Migrations)
	suite.Require().NoError(migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	suite.Require().NoError(err)

	suite.svc, err = NewMarketService(testConfig(), suite.db, bunstore.New(suite.db), lecho.New(os.Stdout))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.svc.Bootstrap(ctx))
}

func (suite *MarketServiceTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *MarketServiceTestSuite) proofFor(principal market.Principal) *auth.Proof {
	token, err := suite.svc.Authority.Issue(principal)
	suite.Require().NoError(err)
	proof, err := suite.svc.Authenticate(token)
	suite.Require().NoError(err)
	return proof
}

func (suite *MarketServiceTestSuite) TestBootstrapIsIdempotent() {
	ctx := context.Background()
	suite.NoError(suite.svc.Bootstrap(ctx))

	settings, err := suite.svc.Settings(ctx, suite.proofFor("platform_admin"))
	suite.NoError(err)
	suite.Equal(market.Principal("platform_admin"), settings.Admin)
	suite.Equal(market.Principal("terra_tokenization"), settings.Registry)
	suite.Equal(market.Principal("usdc_testnet"), settings.PaymentToken)
	suite.Equal(market.Network(common.NetworkTestnet), settings.ActiveNetwork)
	suite.Equal(int64(250), settings.FeeBps)

	network, err := suite.svc.ActiveNetwork(ctx)
	suite.NoError(err)
	suite.Equal(market.Network(common.NetworkTestnet), network)
	token, err := suite.svc.NetworkPaymentToken(ctx, common.NetworkTestnet)
	suite.NoError(err)
	suite.Equal(market.Principal("usdc_testnet"), token)
	_, err = suite.svc.NetworkPaymentToken(ctx, common.NetworkMainnet)
	suite.ErrorIs(err, market.ErrNotFound)
}

func (suite *MarketServiceTestSuite) TestPurchaseIsJournaledAndPublished() {
	ctx := context.Background()
	admin := suite.proofFor("platform_admin")
	seller := suite.proofFor("seller")
	buyer := suite.proofFor("buyer")

	_, balance, err := suite.svc.Mint(ctx, admin, "buyer", decimal.NewFromInt(5000))
	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(5000)))

	asset, err := suite.svc.CreateAsset(ctx, seller, "Agro", "Soy Farm", decimal.NewFromInt(100), decimal.NewFromInt(1000))
	suite.Require().NoError(err)
	suite.Equal(uint64(1), asset.ID)

	purchases := make(chan models.Purchase, 1)
	subId := suite.svc.PurchasePubSub.Subscribe(common.PurchaseTopic, purchases)
	defer suite.svc.PurchasePubSub.Unsubscribe(subId, common.PurchaseTopic)

	receipt, err := suite.svc.BuyTokens(ctx, buyer, asset.ID, decimal.NewFromInt(10))
	suite.Require().NoError(err)
	suite.True(receipt.TotalPaid.Equal(decimal.NewFromInt(1000)))
	suite.True(receipt.FeePaid.Equal(decimal.NewFromInt(25)))

	published := <-purchases
	suite.Equal(asset.ID, published.AssetID)
	suite.Equal("usdc_testnet", published.PaymentToken)
	suite.Equal(common.NetworkTestnet, published.Network)
	suite.Equal(common.PurchaseSourceCoordinator, published.Source)

	journal, err := suite.svc.ListPurchases(ctx, "buyer", 50, 0)
	suite.Require().NoError(err)
	suite.Require().Len(journal, 1)
	suite.Equal(published.ID, journal[0].ID)
	suite.True(journal[0].SellerAmount.Equal(decimal.NewFromInt(975)))
	suite.True(journal[0].PricePerToken.Equal(decimal.NewFromInt(100)))

	token, paid, err := suite.svc.PaymentBalance(ctx, "buyer")
	suite.NoError(err)
	suite.Equal(market.Principal("usdc_testnet"), token)
	suite.True(paid.Equal(decimal.NewFromInt(4000)))
	held, err := suite.svc.BuyerBalance(ctx, asset.ID, "buyer")
	suite.NoError(err)
	suite.True(held.Equal(decimal.NewFromInt(10)))
}

func (suite *MarketServiceTestSuite) TestFailedPurchaseIsNotJournaled() {
	ctx := context.Background()
	seller := suite.proofFor("seller")
	buyer := suite.proofFor("buyer")

	asset, err := suite.svc.CreateAsset(ctx, seller, "Agro", "Soy Farm", decimal.NewFromInt(100), decimal.NewFromInt(1000))
	suite.Require().NoError(err)

	_, err = suite.svc.BuyTokens(ctx, buyer, asset.ID, decimal.NewFromInt(10))
	suite.ErrorIs(err, market.ErrInsufficientFunds)

	journal, err := suite.svc.ListPurchases(ctx, "buyer", 50, 0)
	suite.NoError(err)
	suite.Empty(journal)
	got, err := suite.svc.GetAsset(ctx, asset.ID)
	suite.NoError(err)
	suite.True(got.AvailableTokens.Equal(decimal.NewFromInt(1000)))
}

func (suite *MarketServiceTestSuite) TestDirectBuyRedirects() {
	ctx := context.Background()
	seller := suite.proofFor("seller")
	asset, err := suite.svc.CreateAsset(ctx, seller, "Agro", "Soy Farm", decimal.NewFromInt(100), decimal.NewFromInt(1000))
	suite.Require().NoError(err)

	_, err = suite.svc.DirectBuy(ctx, suite.proofFor("buyer"), asset.ID, decimal.NewFromInt(1))
	suite.ErrorIs(err, market.ErrRedirectRequired)
}

func (suite *MarketServiceTestSuite) TestAdminOperationsRequireAdmin() {
	ctx := context.Background()
	stranger := suite.proofFor("stranger")

	suite.ErrorIs(suite.svc.SetFeeConfig(ctx, stranger, "treasury", 100), market.ErrUnauthorized)
	_, _, err := suite.svc.Mint(ctx, stranger, "stranger", decimal.NewFromInt(1))
	suite.ErrorIs(err, market.ErrUnauthorized)
	_, err = suite.svc.Settings(ctx, stranger)
	suite.ErrorIs(err, market.ErrUnauthorized)

	admin := suite.proofFor("platform_admin")
	suite.NoError(suite.svc.SetNetworkPaymentToken(ctx, admin, common.NetworkMainnet, "usdc_mainnet"))
	suite.NoError(suite.svc.SetActiveNetwork(ctx, admin, common.NetworkMainnet))
	destination := market.Principal("pool")
	suite.NoError(suite.svc.SetLiquidityConfig(ctx, admin, &destination, 4000))
	suite.NoError(suite.svc.SetPaymentToken(ctx, admin, "usdc_default"))

	settings, err := suite.svc.Settings(ctx, admin)
	suite.NoError(err)
	suite.Equal(market.Principal("usdc_mainnet"), settings.PaymentToken)
	suite.Equal(int64(4000), settings.LiquidityShareBps)
}

func (suite *MarketServiceTestSuite) TestLogin() {
	pub, priv, err := ed25519.GenerateKey(nil)
	suite.Require().NoError(err)
	principal := market.Principal(hex.EncodeToString(pub))
	ts := time.Now().Unix()
	sig := hex.EncodeToString(ed25519.Sign(priv, []byte(auth.LoginMessage(principal, ts))))

	token, err := suite.svc.Login(principal, ts, sig)
	suite.Require().NoError(err)
	proof, err := suite.svc.Authenticate(token)
	suite.NoError(err)
	suite.Equal(principal, proof.Principal())

	_, err = suite.svc.Login(principal, ts-3600, sig)
	suite.Error(err)
}

func TestMarketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MarketServiceTestSuite))
}

func TestPubsubDropsWhenSubscriberIsFull(t *testing.T) {
	ps := NewPubsub()
	slow := make(chan models.Purchase)
	fast := make(chan models.Purchase, 1)
	ps.Subscribe(common.PurchaseTopic, slow)
	fastId := ps.Subscribe(common.PurchaseTopic, fast)

	assert.Equal(t, 1, ps.Publish(common.PurchaseTopic, models.Purchase{ID: "a"}))
	assert.Equal(t, "a", (<-fast).ID)

	ps.Unsubscribe(fastId, common.PurchaseTopic)
	_, open := <-fast
	assert.False(t, open)
	assert.Equal(t, 0, ps.Publish("other", models.Purchase{ID: "b"}))
}

func TestPostToWebhook(t *testing.T) {
	received := make(chan models.Purchase, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p models.Purchase
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer srv.Close()

	svc := &MarketService{Logger: lecho.New(os.Stdout), PurchasePubSub: NewPubsub()}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartWebhookSubscription(ctx, srv.URL)

	// wait for the subscription before publishing
	require.Eventually(t, func() bool {
		return svc.PurchasePubSub.CountSubs(common.PurchaseTopic) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, svc.PurchasePubSub.Publish(common.PurchaseTopic, models.Purchase{ID: "p1", AssetID: 4}))

	select {
	case p := <-received:
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, uint64(4), p.AssetID)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not called")
	}
}
