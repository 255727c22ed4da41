package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/service"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.MarketService
}

func NewAuthController(svc *service.MarketService) *AuthController {
	return &AuthController{svc: svc}
}

type AuthRequestBody struct {
	Principal string `json:"principal" validate:"required,hexadecimal,len=64"`
	Timestamp int64  `json:"timestamp" validate:"required"`
	Signature string `json:"signature" validate:"required,hexadecimal,len=128"`
}

type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Auth godoc
// @Summary      Authenticate a wallet
// @Description  Exchanges an ed25519 signature of "terra marketplace login:<principal>:<timestamp>" for an access token
// @Accept       json
// @Produce      json
// @Tags         Auth
// @Param        AuthRequestBody  body      AuthRequestBody  true  "Signed login"
// @Success      200              {object}  AuthResponseBody
// @Failure      400              {object}  responses.ErrorResponse
// @Failure      401              {object}  responses.ErrorResponse
// @Router       /auth [post]
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody
	if err := bindAndValidate(c, &body); err != nil || c.Response().Committed {
		return err
	}

	token, err := controller.svc.Login(market.Principal(body.Principal), body.Timestamp, body.Signature)
	if err != nil {
		c.Logger().Errorf("Login failed for %s: %v", body.Principal, err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	return c.JSON(http.StatusOK, &AuthResponseBody{AccessToken: token})
}
