package v2controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// PurchaseController : PurchaseController struct
type PurchaseController struct {
	svc *service.MarketService
}

func NewPurchaseController(svc *service.MarketService) *PurchaseController {
	return &PurchaseController{svc: svc}
}

type BuyTokensRequestBody struct {
	AssetID  uint64 `json:"asset_id" validate:"required"`
	Quantity string `json:"quantity" validate:"required,amount"`
}

type ListPurchasesResponseBody struct {
	Purchases []models.Purchase `json:"purchases"`
}

// PreviewPurchase godoc
// @Summary      Quote a purchase
// @Description  Computes total, fee and seller amount without changing any state
// @Accept       json
// @Produce      json
// @Tags         Purchase
// @Param        id        path      int     true   "Asset id"
// @Param        quantity  query     string  true   "Token quantity"
// @Param        buyer     query     string  false  "Buyer principal"
// @Success      200       {object}  market.PurchaseReceipt
// @Failure      400       {object}  responses.ErrorResponse
// @Failure      409       {object}  responses.ErrorResponse
// @Router       /v2/assets/{id}/preview [get]
func (controller *PurchaseController) PreviewPurchase(c echo.Context) error {
	id, ok := assetIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	quantity, err := market.ParseAmount(c.QueryParam("quantity"))
	if err != nil {
		return responses.Respond(c, err)
	}
	receipt, err := controller.svc.PreviewPurchase(c.Request().Context(), market.Principal(c.QueryParam("buyer")), id, quantity)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &receipt)
}

// BuyTokens godoc
// @Summary      Buy asset tokens
// @Description  Pays the seller and the platform fee in the active payment token and credits the tokens, all or nothing
// @Accept       json
// @Produce      json
// @Tags         Purchase
// @Param        BuyTokensRequestBody  body      BuyTokensRequestBody  true  "Purchase"
// @Success      200                   {object}  market.PurchaseReceipt
// @Failure      400                   {object}  responses.ErrorResponse
// @Failure      402                   {object}  responses.ErrorResponse
// @Failure      409                   {object}  responses.ErrorResponse
// @Router       /v2/purchases [post]
// @Security     OAuth2Password
func (controller *PurchaseController) BuyTokens(c echo.Context) error {
	var body BuyTokensRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	quantity, err := market.ParseAmount(body.Quantity)
	if err != nil {
		return responses.Respond(c, err)
	}
	receipt, err := controller.svc.BuyTokens(c.Request().Context(), proof(c), body.AssetID, quantity)
	if err != nil {
		c.Logger().Errorf("Purchase of asset %d failed: %v", body.AssetID, err)
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &receipt)
}

// DirectBuy godoc
// @Summary      Buy through the registry
// @Description  Only available while no coordinator is registered; otherwise fails with REDIRECT_REQUIRED
// @Accept       json
// @Produce      json
// @Tags         Purchase
// @Param        BuyTokensRequestBody  body      BuyTokensRequestBody  true  "Purchase"
// @Success      200                   {object}  market.PurchaseReceipt
// @Failure      409                   {object}  responses.ErrorResponse
// @Router       /v2/registry/purchases [post]
// @Security     OAuth2Password
func (controller *PurchaseController) DirectBuy(c echo.Context) error {
	var body BuyTokensRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	quantity, err := market.ParseAmount(body.Quantity)
	if err != nil {
		return responses.Respond(c, err)
	}
	receipt, err := controller.svc.DirectBuy(c.Request().Context(), proof(c), body.AssetID, quantity)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &receipt)
}

// ListPurchases godoc
// @Summary      Purchase history
// @Description  Purchases of the authenticated wallet, newest first
// @Accept       json
// @Produce      json
// @Tags         Purchase
// @Param        limit   query     int  false  "Page size (max 50)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  ListPurchasesResponseBody
// @Router       /v2/purchases [get]
// @Security     OAuth2Password
func (controller *PurchaseController) ListPurchases(c echo.Context) error {
	limit, offset := 50, 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v < limit {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	purchases, err := controller.svc.ListPurchases(c.Request().Context(), proof(c).Principal(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &ListPurchasesResponseBody{Purchases: purchases})
}
