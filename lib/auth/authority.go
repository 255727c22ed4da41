// Package auth mints and checks the proofs that gate every state-changing operation.
package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/terracapital/marketplace/lib/market"
)

const loginMessagePrefix = "terra marketplace login"

type Authority struct {
	secret       []byte
	accessExpiry time.Duration
	loginMaxSkew time.Duration
	now          func() time.Time
}

func NewAuthority(secret []byte, accessExpiry, loginMaxSkew time.Duration) *Authority {
	return &Authority{
		secret:       secret,
		accessExpiry: accessExpiry,
		loginMaxSkew: loginMaxSkew,
		now:          time.Now,
	}
}

// Issue signs an access token for principal.
func (a *Authority) Issue(principal market.Principal) (string, error) {
	if principal.IsZero() {
		return "", market.Errorf(market.KindInvalidInput, "empty principal")
	}
	now := a.now()
	claims := &jwt.StandardClaims{
		Subject:   principal.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(a.accessExpiry).Unix(),
		Id:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify turns a valid access token into a root proof for its subject.
func (a *Authority) Verify(token string) (*Proof, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, market.Errorf(market.KindUnauthorized, "invalid token")
	}
	if claims.Subject == "" {
		return nil, market.Errorf(market.KindUnauthorized, "token has no subject")
	}
	return &Proof{issuer: a, principal: market.Principal(claims.Subject)}, nil
}

// RequireAuth fails unless proof is a root proof of this authority for principal.
func (a *Authority) RequireAuth(proof *Proof, principal market.Principal) error {
	if proof == nil || proof.issuer != a {
		return market.Errorf(market.KindUnauthorized, "missing authorization for %s", principal)
	}
	if proof.Scoped() {
		return market.Errorf(market.KindUnauthorized, "scoped grant cannot authorize %s directly", principal)
	}
	if principal.IsZero() || proof.principal != principal {
		return market.Errorf(market.KindUnauthorized, "%s did not authorize this call", principal)
	}
	return nil
}

// Delegate grants a single-use proof, held by self's principal, for exactly inv.
// Grants cannot be delegated again.
func (a *Authority) Delegate(self *Proof, inv Invocation) (*Proof, error) {
	if err := a.RequireAuth(self, self.Principal()); err != nil {
		return nil, err
	}
	inv.Args = append([]string(nil), inv.Args...)
	return &Proof{
		issuer:     a,
		principal:  self.principal,
		invocation: &inv,
		grantID:    uuid.New(),
	}, nil
}

// RequireInvocation accepts only an unused grant of principal for inv and consumes it.
func (a *Authority) RequireInvocation(proof *Proof, principal market.Principal, inv Invocation) error {
	if proof == nil || proof.issuer != a || !proof.Scoped() {
		return market.Errorf(market.KindUnauthorized, "%s requires a grant from %s", inv.Function, principal)
	}
	if principal.IsZero() || proof.principal != principal {
		return market.Errorf(market.KindUnauthorized, "grant holder %s is not %s", proof.principal, principal)
	}
	if !proof.invocation.Equal(inv) {
		return market.Errorf(market.KindUnauthorized, "grant for %s does not cover %s", proof.invocation, inv)
	}
	if !proof.used.CompareAndSwap(false, true) {
		return market.Errorf(market.KindUnauthorized, "grant %s already used", proof.grantID)
	}
	return nil
}

// LoginMessage is what a wallet signs to obtain an access token.
func LoginMessage(principal market.Principal, timestamp int64) string {
	return loginMessagePrefix + ":" + principal.String() + ":" + strconv.FormatInt(timestamp, 10)
}

// VerifyLogin checks a wallet signature over LoginMessage. The principal is the hex
// encoded ed25519 public key.
func (a *Authority) VerifyLogin(principal market.Principal, timestamp int64, signatureHex string) error {
	pub, err := hex.DecodeString(principal.String())
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return market.Errorf(market.KindUnauthorized, "principal is not an ed25519 public key")
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return market.Errorf(market.KindUnauthorized, "malformed signature")
	}
	skew := a.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > a.loginMaxSkew {
		return market.Errorf(market.KindUnauthorized, "login timestamp outside allowed window")
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), []byte(LoginMessage(principal, timestamp)), sig) {
		return market.Errorf(market.KindUnauthorized, "bad signature")
	}
	return nil
}
