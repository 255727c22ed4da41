package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// NetworkController : NetworkController struct
type NetworkController struct {
	svc *service.MarketService
}

func NewNetworkController(svc *service.MarketService) *NetworkController {
	return &NetworkController{svc: svc}
}

type ActiveNetworkResponse struct {
	Network      string `json:"network"`
	PaymentToken string `json:"payment_token"`
}

type NetworkPaymentTokenResponse struct {
	Network      string `json:"network"`
	PaymentToken string `json:"payment_token"`
}

// ActiveNetwork godoc
// @Summary      Active settlement network
// @Description  The active network and the payment token purchases currently settle in
// @Accept       json
// @Produce      json
// @Tags         Network
// @Success      200  {object}  ActiveNetworkResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/networks/active [get]
func (controller *NetworkController) ActiveNetwork(c echo.Context) error {
	ctx := c.Request().Context()
	network, err := controller.svc.ActiveNetwork(ctx)
	if err != nil {
		return responses.Respond(c, err)
	}
	token, err := controller.svc.PaymentToken(ctx)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &ActiveNetworkResponse{
		Network:      string(network),
		PaymentToken: token.String(),
	})
}

// NetworkPaymentToken godoc
// @Summary      Payment token of a network
// @Accept       json
// @Produce      json
// @Tags         Network
// @Param        network  path      string  true  "testnet or mainnet"
// @Success      200      {object}  NetworkPaymentTokenResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v2/networks/{network}/payment-token [get]
func (controller *NetworkController) NetworkPaymentToken(c echo.Context) error {
	network := market.Network(c.Param("network"))
	token, err := controller.svc.NetworkPaymentToken(c.Request().Context(), network)
	if err != nil {
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &NetworkPaymentTokenResponse{
		Network:      string(network),
		PaymentToken: token.String(),
	})
}
