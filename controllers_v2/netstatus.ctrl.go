package v2controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/netstatus"
)

// NetworkStatusController : NetworkStatusController struct
type NetworkStatusController struct {
	client *netstatus.Client
}

func NewNetworkStatusController(client *netstatus.Client) *NetworkStatusController {
	return &NetworkStatusController{client: client}
}

type NetworkStatusResponse struct {
	Ok     bool              `json:"ok"`
	Data   *netstatus.Health `json:"data"`
	Source string            `json:"source"`
}

// Status godoc
// @Summary      Stellar network status
// @Description  Horizon version and latest ledger of a network. Responses are cached.
// @Accept       json
// @Produce      json
// @Tags         Network
// @Param        network  query     string  false  "testnet (default) or public"
// @Success      200      {object}  NetworkStatusResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      502      {object}  responses.ErrorResponse
// @Router       /api/stellar/network [get]
func (controller *NetworkStatusController) Status(c echo.Context) error {
	network := c.QueryParam("network")
	if network == "" {
		network = netstatus.Testnet
	}
	if network != netstatus.Testnet && network != netstatus.Public {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	health, err := controller.client.Fetch(c.Request().Context(), network)
	if err != nil {
		c.Logger().Errorf("Failed to query horizon for %s: %v", network, err)
		return c.JSON(http.StatusBadGateway, responses.NetworkUnavailableError)
	}
	return c.JSON(http.StatusOK, &NetworkStatusResponse{
		Ok:     true,
		Data:   health,
		Source: "horizon",
	})
}
