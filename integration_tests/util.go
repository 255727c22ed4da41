package integration_tests

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/terracapital/marketplace/db"
	"github.com/terracapital/marketplace/db/migrations"
	_ "github.com/terracapital/marketplace/docs"
	"github.com/terracapital/marketplace/lib"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
	"github.com/terracapital/marketplace/lib/state/bunstore"
	"github.com/terracapital/marketplace/lib/tokens"
	"github.com/terracapital/marketplace/lib/transport"
	"github.com/uptrace/bun/migrate"
)

const (
	testAdminToken   = "admin-key"
	testPaymentToken = "usdc_testnet"
	testTreasury     = "treasury"
)

type wallet struct {
	principal market.Principal
	key       ed25519.PrivateKey
	token     string
}

func newWallet() wallet {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return wallet{principal: market.Principal(hex.EncodeToString(pub)), key: priv}
}

// MarketTestServiceInit opens a private in-memory sqlite database named dbName, migrates
// it and bootstraps a marketplace whose platform admin is admin. An empty adminToken
// leaves the admin routes without the ADMIN_TOKEN check.
func MarketTestServiceInit(dbName string, admin market.Principal, adminToken string) (svc *service.MarketService, err error) {
	c := &service.Config{
		DatabaseUri:          fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName),
		JWTSecret:            []byte("SECRET"),
		JWTAccessTokenExpiry: 3600,
		LoginMaxSkew:         5 * time.Minute,
		AdminToken:           adminToken,
		DefaultRateLimit:     1000,
		StrictRateLimit:      1000,
		BurstRateLimit:       1000,
		Market: service.MarketConfig{
			PlatformAdmin:      admin.String(),
			RegistryAddress:    "terra_tokenization",
			CoordinatorAddress: "terra_marketplace",
			PaymentToken:       testPaymentToken,
			Treasury:           testTreasury,
			FeeBps:             250,
		},
		Network: service.NetworkStatusConfig{CacheTTL: time.Minute},
	}

	dbConn, err := db.Open(c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	logger := lib.Logger(c.LogFilePath)
	svc, err = service.NewMarketService(c, dbConn, bunstore.New(dbConn), logger)
	if err != nil {
		return nil, err
	}
	return svc, svc.Bootstrap(ctx)
}

// initEcho wires the same routes as cmd/server.
func initEcho(svc *service.MarketService) *echo.Echo {
	e := transport.InitEcho(svc.Config, svc.Logger)
	logMw := transport.CreateLoggingMiddleware(svc.Logger)
	strict := transport.CreateRateLimitMiddleware(svc.Config.StrictRateLimit, svc.Config.BurstRateLimit)
	secured := e.Group("", tokens.Middleware(svc.Authority), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(svc.Authority), strict, logMw)
	transport.RegisterV2Endpoints(svc, e, secured, securedWithStrictRateLimit, strict, tokens.AdminTokenMiddleware(svc.Config.AdminToken), logMw)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return e
}

type TestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (suite *TestSuite) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

// doOK performs the request, expects 200 and decodes the body into out.
func (suite *TestSuite) doOK(method, path, token string, body, out interface{}, headers ...string) {
	rec := suite.do(method, path, token, body, headers...)
	raw, _ := io.ReadAll(rec.Body)
	suite.Require().Equal(http.StatusOK, rec.Code, string(raw))
	if out != nil {
		suite.Require().NoError(json.Unmarshal(raw, out))
	}
}

// doNoContent performs the request and expects 204, as returned by the admin setters.
func (suite *TestSuite) doNoContent(method, path, token string, body interface{}, headers ...string) {
	rec := suite.do(method, path, token, body, headers...)
	suite.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())
}

func (suite *TestSuite) checkErrResponse(rec *httptest.ResponseRecorder, status int, kind market.Kind) *responses.ErrorResponse {
	errorResponse := &responses.ErrorResponse{}
	assert.Equal(suite.T(), status, rec.Code)
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(errorResponse))
	assert.True(suite.T(), errorResponse.Error)
	if kind != "" {
		assert.Equal(suite.T(), string(kind), errorResponse.Kind)
	}
	return errorResponse
}

func (suite *TestSuite) login(w *wallet) {
	ts := time.Now().Unix()
	sig := ed25519.Sign(w.key, []byte(auth.LoginMessage(w.principal, ts)))
	var resp ExpectedAuthResponseBody
	suite.doOK(http.MethodPost, "/auth", "", &ExpectedAuthRequestBody{
		Principal: w.principal.String(),
		Timestamp: ts,
		Signature: hex.EncodeToString(sig),
	}, &resp)
	suite.Require().NotEmpty(resp.AccessToken)
	w.token = resp.AccessToken
}
