package v2controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/responses"
	"github.com/terracapital/marketplace/lib/tokens"
)

// bindAndValidate binds the request into body and runs the struct validator.
func bindAndValidate(c echo.Context, body interface{}) error {
	if err := c.Bind(body); err != nil {
		c.Logger().Errorf("Failed to load request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(body); err != nil {
		c.Logger().Errorf("Invalid request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	return nil
}

func assetIDParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil
}

func proof(c echo.Context) *auth.Proof {
	p, _ := tokens.ProofFrom(c)
	return p
}
