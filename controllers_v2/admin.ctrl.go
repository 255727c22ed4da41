package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// AdminController : AdminController struct
type AdminController struct {
	svc *service.MarketService
}

func NewAdminController(svc *service.MarketService) *AdminController {
	return &AdminController{svc: svc}
}

type FeeConfigRequestBody struct {
	Treasury string `json:"treasury" validate:"required"`
	FeeBps   *int64 `json:"fee_bps" validate:"required"`
}

type PaymentTokenRequestBody struct {
	Token string `json:"token" validate:"required"`
}

type ActiveNetworkRequestBody struct {
	Network string `json:"network" validate:"required"`
}

type LiquidityConfigRequestBody struct {
	// null clears the destination
	Destination *string `json:"destination"`
	ShareBps    int64   `json:"share_bps"`
}

type MintRequestBody struct {
	To     string `json:"to" validate:"required"`
	Amount string `json:"amount" validate:"required,amount"`
}

type MintResponseBody struct {
	Token   string `json:"token"`
	To      string `json:"to"`
	Balance string `json:"balance"`
}

// Settings godoc
// @Summary      Coordinator settings
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Success      200  {object}  marketplace.Settings
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v2/admin/settings [get]
// @Security     OAuth2Password
func (controller *AdminController) Settings(c echo.Context) error {
	settings, err := controller.svc.Settings(c.Request().Context(), proof(c))
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &settings)
}

// SetFeeConfig godoc
// @Summary      Update treasury and platform fee
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        FeeConfigRequestBody  body  FeeConfigRequestBody  true  "Fee config"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v2/admin/fee [put]
// @Security     OAuth2Password
func (controller *AdminController) SetFeeConfig(c echo.Context) error {
	var body FeeConfigRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	err := controller.svc.SetFeeConfig(c.Request().Context(), proof(c), market.Principal(body.Treasury), *body.FeeBps)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetPaymentToken godoc
// @Summary      Update the default payment token
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        PaymentTokenRequestBody  body  PaymentTokenRequestBody  true  "Token"
// @Success      204
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v2/admin/payment-token [put]
// @Security     OAuth2Password
func (controller *AdminController) SetPaymentToken(c echo.Context) error {
	var body PaymentTokenRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	if err := controller.svc.SetPaymentToken(c.Request().Context(), proof(c), market.Principal(body.Token)); err != nil {
		return responses.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetNetworkPaymentToken godoc
// @Summary      Map a network to a payment token
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        network                  path  string                   true  "testnet or mainnet"
// @Param        PaymentTokenRequestBody  body  PaymentTokenRequestBody  true  "Token"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /v2/admin/networks/{network}/payment-token [put]
// @Security     OAuth2Password
func (controller *AdminController) SetNetworkPaymentToken(c echo.Context) error {
	var body PaymentTokenRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	network := market.Network(c.Param("network"))
	if err := controller.svc.SetNetworkPaymentToken(c.Request().Context(), proof(c), network, market.Principal(body.Token)); err != nil {
		return responses.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetActiveNetwork godoc
// @Summary      Switch the active network
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        ActiveNetworkRequestBody  body  ActiveNetworkRequestBody  true  "Network"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /v2/admin/networks/active [put]
// @Security     OAuth2Password
func (controller *AdminController) SetActiveNetwork(c echo.Context) error {
	var body ActiveNetworkRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	if err := controller.svc.SetActiveNetwork(c.Request().Context(), proof(c), market.Network(body.Network)); err != nil {
		return responses.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetLiquidityConfig godoc
// @Summary      Route part of the fee to a liquidity pool
// @Description  A null destination clears the configuration and resets the share to 0
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        LiquidityConfigRequestBody  body  LiquidityConfigRequestBody  true  "Liquidity config"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Router       /v2/admin/liquidity [put]
// @Security     OAuth2Password
func (controller *AdminController) SetLiquidityConfig(c echo.Context) error {
	var body LiquidityConfigRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	var destination *market.Principal
	if body.Destination != nil {
		d := market.Principal(*body.Destination)
		destination = &d
	}
	if err := controller.svc.SetLiquidityConfig(c.Request().Context(), proof(c), destination, body.ShareBps); err != nil {
		return responses.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mint godoc
// @Summary      Fund a wallet with payment tokens
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        MintRequestBody  body      MintRequestBody  true  "Mint"
// @Success      200              {object}  MintResponseBody
// @Failure      401              {object}  responses.ErrorResponse
// @Router       /v2/admin/mint [post]
// @Security     OAuth2Password
func (controller *AdminController) Mint(c echo.Context) error {
	var body MintRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}
	amount, err := market.ParseAmount(body.Amount)
	if err != nil {
		return responses.Respond(c, err)
	}
	token, balance, err := controller.svc.Mint(c.Request().Context(), proof(c), market.Principal(body.To), amount)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &MintResponseBody{
		Token:   token.String(),
		To:      body.To,
		Balance: balance.String(),
	})
}
