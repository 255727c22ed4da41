package integration_tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib/service"
	"github.com/terracapital/marketplace/lib/tokens"
)

type WebHookTestSuite struct {
	TestSuite
	service       *service.MarketService
	webHookServer *httptest.Server
	purchaseChan  chan models.Purchase
	cancelWebhook context.CancelFunc
	admin         wallet
	seller        wallet
	buyer         wallet
}

func (suite *WebHookTestSuite) SetupSuite() {
	suite.purchaseChan = make(chan models.Purchase, 10)
	suite.webHookServer = httptest.NewServer(http.HandlerFunc(suite.webhookHandler))
	suite.admin = newWallet()
	suite.seller = newWallet()
	suite.buyer = newWallet()

	svc, err := MarketTestServiceInit("webhook_integration", suite.admin.principal, testAdminToken)
	if err != nil {
		suite.T().Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	suite.echo = initEcho(svc)

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancelWebhook = cancel
	go svc.StartWebhookSubscription(ctx, suite.webHookServer.URL)
	suite.Require().Eventually(func() bool {
		return svc.PurchasePubSub.CountSubs(common.PurchaseTopic) == 1
	}, time.Second, 10*time.Millisecond)

	suite.login(&suite.admin)
	suite.login(&suite.seller)
	suite.login(&suite.buyer)
}

func (suite *WebHookTestSuite) TearDownSuite() {
	suite.cancelWebhook()
	suite.webHookServer.Close()
	suite.service.DB.Close()
}

func (suite *WebHookTestSuite) webhookHandler(w http.ResponseWriter, r *http.Request) {
	purchase := models.Purchase{}
	err := json.NewDecoder(r.Body).Decode(&purchase)
	if err != nil {
		suite.echo.Logger.Error(err)
		close(suite.purchaseChan)
		return
	}
	suite.purchaseChan <- purchase
}

func (suite *WebHookTestSuite) TestWebHook() {
	asset := ExpectedAsset{}
	suite.doOK(http.MethodPost, "/v2/assets", suite.seller.token, &ExpectedCreateAssetRequestBody{
		Category: "commodities", Title: "Gold bar", PricePerToken: "40", TotalTokens: "100",
	}, &asset)
	suite.doOK(http.MethodPost, "/v2/admin/mint", suite.admin.token, &ExpectedMintRequestBody{
		To: suite.buyer.principal.String(), Amount: "400",
	}, nil, tokens.AdminTokenHeader, testAdminToken)

	suite.doOK(http.MethodPost, "/v2/purchases", suite.buyer.token, &ExpectedBuyTokensRequestBody{
		AssetID:  asset.ID,
		Quantity: "10",
	}, nil)

	select {
	case purchase := <-suite.purchaseChan:
		assert.Equal(suite.T(), asset.ID, purchase.AssetID)
		assert.Equal(suite.T(), suite.buyer.principal.String(), purchase.Buyer)
		assert.Equal(suite.T(), "400", purchase.TotalPaid.String())
		assert.Equal(suite.T(), "10", purchase.FeePaid.String())
		assert.Equal(suite.T(), "390", purchase.SellerAmount.String())
		assert.Equal(suite.T(), common.PurchaseStateCompleted, purchase.State)
	case <-time.After(5 * time.Second):
		suite.T().Fatal("webhook was not called")
	}
}

func TestWebHookSuite(t *testing.T) {
	suite.Run(t, new(WebHookTestSuite))
}
