package auth

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/terracapital/marketplace/lib/market"
)

// Invocation names exactly one downstream call a scoped proof is good for.
type Invocation struct {
	Contract market.Principal
	Function string
	Args     []string
}

func (inv Invocation) Equal(other Invocation) bool {
	if inv.Contract != other.Contract || inv.Function != other.Function || len(inv.Args) != len(other.Args) {
		return false
	}
	for i := range inv.Args {
		if inv.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s.%s(%s)", inv.Contract, inv.Function, strings.Join(inv.Args, ","))
}

// Proof is evidence that a principal authorized a call. Only an Authority can mint
// one: root proofs by verifying a token, scoped proofs by delegation.
type Proof struct {
	issuer     *Authority
	principal  market.Principal
	invocation *Invocation
	grantID    uuid.UUID
	used       atomic.Bool
}

func (p *Proof) Principal() market.Principal {
	if p == nil {
		return ""
	}
	return p.principal
}

// Scoped reports whether the proof is a single-use delegation grant.
func (p *Proof) Scoped() bool {
	return p != nil && p.invocation != nil
}
