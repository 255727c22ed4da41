// Package payment moves payment-token balances between principals.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

//go:generate mockgen -destination=./mock_payment/payment.go github.com/terracapital/marketplace/lib/payment Gateway

// Gateway transfers amount of token from the principal behind the from proof to to,
// inside the caller's transaction. A failed transfer fails the whole invocation.
type Gateway interface {
	Transfer(ctx context.Context, tx state.Tx, token market.Principal, from *auth.Proof, to market.Principal, amount decimal.Decimal) error
}
