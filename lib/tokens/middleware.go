package tokens

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/lib/auth"
)

// Middleware verifies the bearer token and stores the root proof and its principal on
// the echo context.
func Middleware(authority *auth.Authority) echo.MiddlewareFunc {
	config := middleware.DefaultKeyAuthConfig
	config.Validator = func(token string, c echo.Context) (bool, error) {
		proof, err := authority.Verify(token)
		if err != nil {
			c.Logger().Debugf("Rejected bearer token: %v", err)
			return false, nil
		}
		c.Set(common.ContextKeyProof, proof)
		c.Set(common.ContextKeyPrincipal, proof.Principal().String())
		return true, nil
	}
	config.ErrorHandler = func(err error, c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"error":   true,
			"code":    1,
			"message": "bad auth",
		})
	}
	return middleware.KeyAuthWithConfig(config)
}

// ProofFrom returns the proof stored by Middleware.
func ProofFrom(c echo.Context) (*auth.Proof, bool) {
	proof, ok := c.Get(common.ContextKeyProof).(*auth.Proof)
	return proof, ok && proof != nil
}
