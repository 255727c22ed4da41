package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// StateEntry : one key of the keyed module state (registry, coordinator, payment ledger)
type StateEntry struct {
	bun.BaseModel `bun:"table:state_entries"`

	Key       string    `bun:",pk"`
	Value     []byte    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (e *StateEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		e.UpdatedAt = time.Now()
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*StateEntry)(nil)
