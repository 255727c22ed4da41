package v2controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// AssetController : AssetController struct
type AssetController struct {
	svc *service.MarketService
}

func NewAssetController(svc *service.MarketService) *AssetController {
	return &AssetController{svc: svc}
}

type CreateAssetRequestBody struct {
	Category      string `json:"category" validate:"required,max=120"`
	Title         string `json:"title" validate:"required,max=120"`
	PricePerToken string `json:"price_per_token" validate:"required,amount"`
	TotalTokens   string `json:"total_tokens" validate:"required,amount"`
}

type SetAssetActiveRequestBody struct {
	Active *bool `json:"active" validate:"required"`
}

type ListAssetsResponseBody struct {
	Assets []market.Asset `json:"assets"`
	NextID uint64         `json:"next_id,omitempty"`
}

type BuyerBalanceResponseBody struct {
	AssetID uint64 `json:"asset_id"`
	Buyer   string `json:"buyer"`
	Balance string `json:"balance"`
}

// ListAssets godoc
// @Summary      List assets
// @Description  Returns at most 50 assets with id >= from_id, skipping ids that do not exist
// @Accept       json
// @Produce      json
// @Tags         Asset
// @Param        from_id  query     int  false  "First asset id"
// @Param        limit    query     int  false  "Page size (max 50)"
// @Success      200      {object}  ListAssetsResponseBody
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v2/assets [get]
func (controller *AssetController) ListAssets(c echo.Context) error {
	fromID := uint64(common.FirstAssetID)
	limit := uint32(common.MaxListLimit)
	if v := c.QueryParam("from_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		fromID = id
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		limit = uint32(l)
	}

	assets, err := controller.svc.ListAssets(c.Request().Context(), fromID, limit)
	if err != nil {
		return responses.Respond(c, err)
	}
	resp := &ListAssetsResponseBody{Assets: assets}
	if n := len(assets); n > 0 && n == int(min(limit, common.MaxListLimit)) {
		resp.NextID = assets[n-1].ID + 1
	}
	return c.JSON(http.StatusOK, resp)
}

// GetAsset godoc
// @Summary      Retrieve an asset
// @Accept       json
// @Produce      json
// @Tags         Asset
// @Param        id   path      int  true  "Asset id"
// @Success      200  {object}  market.Asset
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/assets/{id} [get]
func (controller *AssetController) GetAsset(c echo.Context) error {
	id, ok := assetIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	asset, err := controller.svc.GetAsset(c.Request().Context(), id)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &asset)
}

// CreateAsset godoc
// @Summary      List a new asset
// @Description  Registers an asset sold by the authenticated wallet. All tokens start available.
// @Accept       json
// @Produce      json
// @Tags         Asset
// @Param        CreateAssetRequestBody  body      CreateAssetRequestBody  true  "Asset"
// @Success      200                     {object}  market.Asset
// @Failure      400                     {object}  responses.ErrorResponse
// @Failure      401                     {object}  responses.ErrorResponse
// @Router       /v2/assets [post]
// @Security     OAuth2Password
func (controller *AssetController) CreateAsset(c echo.Context) error {
	var body CreateAssetRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	price, err := market.ParseAmount(body.PricePerToken)
	if err != nil {
		return responses.Respond(c, err)
	}
	total, err := market.ParseAmount(body.TotalTokens)
	if err != nil {
		return responses.Respond(c, err)
	}

	asset, err := controller.svc.CreateAsset(c.Request().Context(), proof(c), body.Category, body.Title, price, total)
	if err != nil {
		c.Logger().Errorf("Failed to create asset: %v", err)
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &asset)
}

// SetAssetActive godoc
// @Summary      Pause or resume sales of an asset
// @Accept       json
// @Produce      json
// @Tags         Asset
// @Param        id                         path      int                        true  "Asset id"
// @Param        SetAssetActiveRequestBody  body      SetAssetActiveRequestBody  true  "Active flag"
// @Success      200                        {object}  market.Asset
// @Failure      401                        {object}  responses.ErrorResponse
// @Failure      404                        {object}  responses.ErrorResponse
// @Router       /v2/assets/{id}/active [put]
// @Security     OAuth2Password
func (controller *AssetController) SetAssetActive(c echo.Context) error {
	id, ok := assetIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	var body SetAssetActiveRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	asset, err := controller.svc.SetAssetActive(c.Request().Context(), proof(c), id, *body.Active)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &asset)
}

// BuyerBalance godoc
// @Summary      Asset tokens held by a buyer
// @Description  Defaults to the authenticated wallet when buyer is omitted
// @Accept       json
// @Produce      json
// @Tags         Asset
// @Param        id     path      int     true   "Asset id"
// @Param        buyer  query     string  false  "Buyer principal"
// @Success      200    {object}  BuyerBalanceResponseBody
// @Router       /v2/assets/{id}/balance [get]
// @Security     OAuth2Password
func (controller *AssetController) BuyerBalance(c echo.Context) error {
	id, ok := assetIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	buyer := market.Principal(c.QueryParam("buyer"))
	if buyer.IsZero() {
		buyer = proof(c).Principal()
	}
	balance, err := controller.svc.BuyerBalance(c.Request().Context(), id, buyer)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &BuyerBalanceResponseBody{
		AssetID: id,
		Buyer:   buyer.String(),
		Balance: balance.String(),
	})
}
