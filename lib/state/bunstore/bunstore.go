// Package bunstore persists module state in the state_entries table.
package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/terracapital/marketplace/db/models"
	"github.com/terracapital/marketplace/lib/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key state.Key, dst interface{}) (bool, error) {
	return get(ctx, s.db, key, dst)
}

func (s *Store) Has(ctx context.Context, key state.Key) (bool, error) {
	return has(ctx, s.db, key)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx state.Tx) error) error {
	opts := &sql.TxOptions{}
	// sqlite only offers serializable transactions and rejects the explicit level
	if s.db.Dialect().Name() == dialect.PG {
		opts.Isolation = sql.LevelSerializable
	}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &bunTx{tx: tx})
	})
}

type bunTx struct {
	tx bun.Tx
}

func (t *bunTx) Get(ctx context.Context, key state.Key, dst interface{}) (bool, error) {
	return get(ctx, t.tx, key, dst)
}

func (t *bunTx) Has(ctx context.Context, key state.Key) (bool, error) {
	return has(ctx, t.tx, key)
}

func (t *bunTx) Put(ctx context.Context, key state.Key, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := &models.StateEntry{Key: key.String(), Value: raw}
	_, err = t.tx.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (t *bunTx) Delete(ctx context.Context, key state.Key) error {
	_, err := t.tx.NewDelete().
		Model((*models.StateEntry)(nil)).
		Where("key = ?", key.String()).
		Exec(ctx)
	return err
}

func get(ctx context.Context, db bun.IDB, key state.Key, dst interface{}) (bool, error) {
	entry := models.StateEntry{}
	err := db.NewSelect().Model(&entry).Where("key = ?", key.String()).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(entry.Value, dst)
}

func has(ctx context.Context, db bun.IDB, key state.Key) (bool, error) {
	return db.NewSelect().Model((*models.StateEntry)(nil)).Where("key = ?", key.String()).Exists(ctx)
}

var (
	_ state.Store = (*Store)(nil)
	_ state.Tx    = (*bunTx)(nil)
)
