package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// PaymentController : PaymentController struct
type PaymentController struct {
	svc *service.MarketService
}

func NewPaymentController(svc *service.MarketService) *PaymentController {
	return &PaymentController{svc: svc}
}

type PaymentBalanceResponse struct {
	Token   string `json:"token"`
	Balance string `json:"balance"`
}

// Balance godoc
// @Summary      Retrieve payment token balance
// @Description  Balance of the authenticated wallet in the active payment token
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  PaymentBalanceResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/payments/balance [get]
// @Security     OAuth2Password
func (controller *PaymentController) Balance(c echo.Context) error {
	who := proof(c).Principal()
	token, balance, err := controller.svc.PaymentBalance(c.Request().Context(), who)
	if err != nil {
		c.Logger().Errorf("Error fetching balance for %s: %v", who, err)
		return responses.Respond(c, err)
	}
	return c.JSON(http.StatusOK, &PaymentBalanceResponse{
		Token:   token.String(),
		Balance: balance.String(),
	})
}
