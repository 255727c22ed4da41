// Package state is the keyed persistent store behind the registry, the coordinator
// and the payment ledger. Each module owns a key namespace; values are JSON.
package state

import (
	"context"
	"fmt"
	"strings"
)

// Key addresses one stored value, e.g. "registry/asset/7".
type Key string

// NewKey joins a namespace and its parts with "/".
func NewKey(namespace string, parts ...interface{}) Key {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte('/')
		fmt.Fprint(&b, p)
	}
	return Key(b.String())
}

func (k Key) String() string {
	return string(k)
}

type Reader interface {
	// Get decodes the value stored under key into dst. found is false when the key
	// has no value, in which case dst is left untouched.
	Get(ctx context.Context, key Key, dst interface{}) (found bool, err error)
	Has(ctx context.Context, key Key) (bool, error)
}

// Tx is a read-write view bound to one transaction.
type Tx interface {
	Reader
	Put(ctx context.Context, key Key, value interface{}) error
	Delete(ctx context.Context, key Key) error
}

type Store interface {
	Reader
	// RunInTx runs fn in a transaction. If fn returns an error none of its writes
	// are applied. Implementations are not re-entrant: fn must not call RunInTx.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
