package integration_tests

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/terracapital/marketplace/lib/service"
	"github.com/terracapital/marketplace/lib/transport"
	"github.com/terracapital/marketplace/netstatus"
)

type ExpectedNetworkStatusResponseBody struct {
	Ok     bool             `json:"ok"`
	Data   netstatus.Health `json:"data"`
	Source string           `json:"source"`
}

type NetworkStatusTestSuite struct {
	TestSuite
	service *service.MarketService
	horizon *httptest.Server
	calls   atomic.Int32
}

func (suite *NetworkStatusTestSuite) SetupSuite() {
	suite.horizon = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"horizon_version":"2.30.0","core_version":"stellar-core 21.0.0","current_protocol_version":21,"history_latest_ledger":51234567}`))
	}))

	svc, err := MarketTestServiceInit("netstatus_integration", newWallet().principal, testAdminToken)
	if err != nil {
		suite.T().Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	suite.echo = initEcho(svc)
	client := netstatus.NewClient(suite.horizon.URL, suite.horizon.URL, svc.Logger)
	transport.RegisterNetworkStatusEndpoint(svc, suite.echo, client, transport.CreateLoggingMiddleware(svc.Logger))
}

func (suite *NetworkStatusTestSuite) TearDownSuite() {
	suite.horizon.Close()
	suite.service.DB.Close()
}

func (suite *NetworkStatusTestSuite) TestStatusIsCached() {
	resp := ExpectedNetworkStatusResponseBody{}
	suite.doOK(http.MethodGet, "/api/stellar/network?network=public", "", nil, &resp)
	assert.True(suite.T(), resp.Ok)
	assert.Equal(suite.T(), "horizon", resp.Source)
	assert.Equal(suite.T(), netstatus.Public, resp.Data.Network)
	assert.Equal(suite.T(), int32(21), resp.Data.CurrentProtocolVersion)

	calls := suite.calls.Load()
	suite.doOK(http.MethodGet, "/api/stellar/network?network=public", "", nil, &resp)
	assert.Equal(suite.T(), calls, suite.calls.Load())
}

func (suite *NetworkStatusTestSuite) TestUnknownNetwork() {
	rec := suite.do(http.MethodGet, "/api/stellar/network?network=futurenet", "", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func TestNetworkStatusSuite(t *testing.T) {
	suite.Run(t, new(NetworkStatusTestSuite))
}
