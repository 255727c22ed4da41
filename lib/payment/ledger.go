package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terracapital/marketplace/lib/auth"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
)

const namespace = "payment"

// Ledger is the store-backed payment token: balances live under
// payment/<token>/balance/<principal>.
type Ledger struct {
	authority *auth.Authority
	issuer    market.Principal
}

// NewLedger returns a ledger whose tokens can only be minted by issuer.
func NewLedger(authority *auth.Authority, issuer market.Principal) *Ledger {
	return &Ledger{authority: authority, issuer: issuer}
}

func balanceKey(token, who market.Principal) state.Key {
	return state.NewKey(namespace, token, "balance", who)
}

func (l *Ledger) Balance(ctx context.Context, r state.Reader, token, who market.Principal) (decimal.Decimal, error) {
	balance := decimal.Zero
	if _, err := r.Get(ctx, balanceKey(token, who), &balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (l *Ledger) Transfer(ctx context.Context, tx state.Tx, token market.Principal, from *auth.Proof, to market.Principal, amount decimal.Decimal) error {
	payer := from.Principal()
	if err := l.authority.RequireAuth(from, payer); err != nil {
		return err
	}
	if err := checkAmount(token, to, amount); err != nil {
		return err
	}
	balance, err := l.Balance(ctx, tx, token, payer)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return market.Errorf(market.KindInsufficientFunds, "%s holds %s %s, needs %s", payer, balance, token, amount)
	}
	if err := tx.Put(ctx, balanceKey(token, payer), balance.Sub(amount)); err != nil {
		return err
	}
	return l.credit(ctx, tx, token, to, amount)
}

// Mint credits new tokens to to. Only the ledger issuer may mint.
func (l *Ledger) Mint(ctx context.Context, tx state.Tx, issuer *auth.Proof, token, to market.Principal, amount decimal.Decimal) error {
	if err := l.authority.RequireAuth(issuer, l.issuer); err != nil {
		return err
	}
	if err := checkAmount(token, to, amount); err != nil {
		return err
	}
	return l.credit(ctx, tx, token, to, amount)
}

func (l *Ledger) credit(ctx context.Context, tx state.Tx, token, to market.Principal, amount decimal.Decimal) error {
	balance, err := l.Balance(ctx, tx, token, to)
	if err != nil {
		return err
	}
	balance, err = market.CheckedAdd(balance, amount)
	if err != nil {
		return err
	}
	return tx.Put(ctx, balanceKey(token, to), balance)
}

func checkAmount(token, to market.Principal, amount decimal.Decimal) error {
	if token.IsZero() || to.IsZero() {
		return market.Errorf(market.KindInvalidInput, "token and recipient are required")
	}
	if err := market.ValidateAmount(amount); err != nil {
		return err
	}
	if amount.IsNegative() {
		return market.Errorf(market.KindInvalidInput, "negative amount %s", amount)
	}
	return nil
}

var _ Gateway = (*Ledger)(nil)
