package responses

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/terracapital/marketplace/common"
	"github.com/terracapital/marketplace/lib/market"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Kind           string `json:"kind,omitempty"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var NetworkUnavailableError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "network status unavailable",
	HttpStatusCode: 502,
}

// kindCodes maps a domain error kind to its response code and status.
var kindCodes = map[market.Kind]struct {
	code   int
	status int
}{
	market.KindInvalidInput:             {8, http.StatusBadRequest},
	market.KindNotFound:                 {4, http.StatusNotFound},
	market.KindUnauthorized:             {1, http.StatusUnauthorized},
	market.KindInactiveAsset:            {10, http.StatusConflict},
	market.KindInsufficientAvailability: {11, http.StatusConflict},
	market.KindArithmeticOverflow:       {12, http.StatusUnprocessableEntity},
	market.KindArithmeticUnderflow:      {13, http.StatusUnprocessableEntity},
	market.KindAlreadyInitialized:       {14, http.StatusConflict},
	market.KindNotInitialized:           {15, http.StatusServiceUnavailable},
	market.KindUnsupportedNetwork:       {16, http.StatusBadRequest},
	market.KindRedirectRequired:         {17, http.StatusConflict},
	market.KindSellerMismatch:           {18, http.StatusConflict},
	market.KindInsufficientFunds:        {2, http.StatusPaymentRequired},
}

// FromError builds the response of a domain error. ok is false for anything that is
// not a *market.Error.
func FromError(err error) (resp ErrorResponse, ok bool) {
	var merr *market.Error
	if !errors.As(err, &merr) {
		return GeneralServerError, false
	}
	c, found := kindCodes[merr.Kind]
	if !found {
		return GeneralServerError, false
	}
	msg := merr.Message
	if msg == "" {
		msg = string(merr.Kind)
	}
	return ErrorResponse{
		Error:          true,
		Code:           c.code,
		Kind:           string(merr.Kind),
		Message:        msg,
		HttpStatusCode: c.status,
	}, true
}

// Respond writes err as JSON. Domain errors get their mapped status, everything else
// goes to the echo error handler.
func Respond(c echo.Context, err error) error {
	resp, ok := FromError(err)
	if !ok {
		return err
	}
	return c.JSON(resp.HttpStatusCode, resp)
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("Principal", c.Get(common.ContextKeyPrincipal))
			hub.CaptureException(err)
		})
	}
	if resp, ok := FromError(err); ok {
		c.JSON(resp.HttpStatusCode, resp)
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	c.JSON(http.StatusInternalServerError, GeneralServerError)
}

// isErrAllowedForSentry filters out bad auth responses and expected domain failures.
func isErrAllowedForSentry(err error) bool {
	if market.KindOf(err) != "" {
		return false
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(echo.Map); ok {
			if code, ok := m["code"].(int); ok && code == BadAuthError.Code {
				return false
			}
		}
		if he.Code == http.StatusUnauthorized {
			return false
		}
	}
	return true
}
