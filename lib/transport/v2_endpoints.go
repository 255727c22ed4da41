package transport

import (
	"github.com/labstack/echo/v4"
	v2controllers "github.com/terracapital/marketplace/controllers_v2"
	"github.com/terracapital/marketplace/lib/service"
	"github.com/terracapital/marketplace/netstatus"
)

func RegisterV2Endpoints(svc *service.MarketService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.POST("/auth", v2controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)
	e.GET("/health", v2controllers.NewHealthController().Check)

	assetCtrl := v2controllers.NewAssetController(svc)
	purchaseCtrl := v2controllers.NewPurchaseController(svc)
	networkCtrl := v2controllers.NewNetworkController(svc)

	e.GET("/v2/assets", assetCtrl.ListAssets, logMw)
	e.GET("/v2/assets/:id", assetCtrl.GetAsset, logMw)
	e.GET("/v2/assets/:id/preview", purchaseCtrl.PreviewPurchase, logMw)
	secured.POST("/v2/assets", assetCtrl.CreateAsset)
	secured.PUT("/v2/assets/:id/active", assetCtrl.SetAssetActive)
	secured.GET("/v2/assets/:id/balance", assetCtrl.BuyerBalance)

	securedWithStrictRateLimit.POST("/v2/purchases", purchaseCtrl.BuyTokens)
	securedWithStrictRateLimit.POST("/v2/registry/purchases", purchaseCtrl.DirectBuy)
	secured.GET("/v2/purchases", purchaseCtrl.ListPurchases)

	secured.GET("/v2/payments/balance", v2controllers.NewPaymentController(svc).Balance)
	e.GET("/v2/networks/active", networkCtrl.ActiveNetwork, logMw)
	e.GET("/v2/networks/:network/payment-token", networkCtrl.NetworkPaymentToken, logMw)

	adminCtrl := v2controllers.NewAdminController(svc)
	admin := secured.Group("/v2/admin", adminMw)
	admin.GET("/settings", adminCtrl.Settings)
	admin.PUT("/fee", adminCtrl.SetFeeConfig)
	admin.PUT("/payment-token", adminCtrl.SetPaymentToken)
	admin.PUT("/networks/:network/payment-token", adminCtrl.SetNetworkPaymentToken)
	admin.PUT("/networks/active", adminCtrl.SetActiveNetwork)
	admin.PUT("/liquidity", adminCtrl.SetLiquidityConfig)
	admin.POST("/mint", adminCtrl.Mint)
}

// RegisterNetworkStatusEndpoint serves the cached network status proxy.
func RegisterNetworkStatusEndpoint(svc *service.MarketService, e *echo.Echo, reader *netstatus.Client, logMw echo.MiddlewareFunc) {
	cacheClient := CreateCacheClient(svc.Config.Network.CacheTTL)
	e.GET("/api/stellar/network", v2controllers.NewNetworkStatusController(reader).Status, cacheClient.Middleware(), logMw)
}
