package tokens

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
)

func serve(e *echo.Echo, header string) *httptest.ResponseRecorder {
	return serveWith(e, echo.HeaderAuthorization, header)
}

func serveWith(e *echo.Echo, name, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(name, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	authority := auth.NewAuthority([]byte("secret"), time.Hour, time.Minute)
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		proof, ok := ProofFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, proof.Principal().String())
	}, Middleware(authority))

	token, err := authority.Issue(market.Principal("alice"))
	require.NoError(t, err)

	rec := serve(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	other := auth.NewAuthority([]byte("other"), time.Hour, time.Minute)
	foreign, err := other.Issue(market.Principal("alice"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(e, "Bearer "+foreign).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, "").Code)
}

func TestAdminTokenMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, AdminTokenMiddleware("admin-key"))

	assert.Equal(t, http.StatusOK, serveWith(e, AdminTokenHeader, "admin-key").Code)
	assert.Equal(t, http.StatusUnauthorized, serveWith(e, AdminTokenHeader, "nope").Code)
	assert.Equal(t, http.StatusBadRequest, serve(e, "Bearer admin-key").Code)

	open := echo.New()
	open.GET("/me", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, AdminTokenMiddleware(""))
	assert.Equal(t, http.StatusOK, serve(open, "").Code)
}
