package market

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. Every kind aborts the whole invocation.
type Kind string

const (
	KindInvalidInput             Kind = "INVALID_INPUT"
	KindNotFound                 Kind = "NOT_FOUND"
	KindUnauthorized             Kind = "UNAUTHORIZED"
	KindInactiveAsset            Kind = "INACTIVE_ASSET"
	KindInsufficientAvailability Kind = "INSUFFICIENT_AVAILABILITY"
	KindArithmeticOverflow       Kind = "ARITHMETIC_OVERFLOW"
	KindArithmeticUnderflow      Kind = "ARITHMETIC_UNDERFLOW"
	KindAlreadyInitialized       Kind = "ALREADY_INITIALIZED"
	KindNotInitialized           Kind = "NOT_INITIALIZED"
	KindUnsupportedNetwork       Kind = "UNSUPPORTED_NETWORK"
	KindRedirectRequired         Kind = "REDIRECT_REQUIRED"
	KindSellerMismatch           Kind = "SELLER_MISMATCH"
	// raised by the payment gateway, not by the registry or the coordinator
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
)

// Error is the typed failure returned by registry, coordinator and gateway operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, market.ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput             = &Error{Kind: KindInvalidInput}
	ErrNotFound                 = &Error{Kind: KindNotFound}
	ErrUnauthorized             = &Error{Kind: KindUnauthorized}
	ErrInactiveAsset            = &Error{Kind: KindInactiveAsset}
	ErrInsufficientAvailability = &Error{Kind: KindInsufficientAvailability}
	ErrArithmeticOverflow       = &Error{Kind: KindArithmeticOverflow}
	ErrArithmeticUnderflow      = &Error{Kind: KindArithmeticUnderflow}
	ErrAlreadyInitialized       = &Error{Kind: KindAlreadyInitialized}
	ErrNotInitialized           = &Error{Kind: KindNotInitialized}
	ErrUnsupportedNetwork       = &Error{Kind: KindUnsupportedNetwork}
	ErrRedirectRequired         = &Error{Kind: KindRedirectRequired}
	ErrSellerMismatch           = &Error{Kind: KindSellerMismatch}
	ErrInsufficientFunds        = &Error{Kind: KindInsufficientFunds}
)

func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error, or "" for anything else
// (storage failures, cancelled contexts, ...).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
