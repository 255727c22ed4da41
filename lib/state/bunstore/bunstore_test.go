package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terracapital/marketplace/db/migrations"
	"github.com/terracapital/marketplace/lib/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/migrate"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	return db
}

type position struct {
	Owner string `json:"owner"`
	Units string `json:"units"`
}

func TestPutGetAndOverwrite(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	key := state.NewKey("registry", "asset", 1)

	found, err := s.Get(ctx, key, &position{})
	assert.NoError(t, err)
	assert.False(t, found)

	for _, units := range []string{"10", "170141183460469231731687303715884105727"} {
		err = s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
			return tx.Put(ctx, key, position{Owner: "GSELLER", Units: units})
		})
		require.NoError(t, err)
	}

	var got position
	found, err = s.Get(ctx, key, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "170141183460469231731687303715884105727", got.Units)

	has, err := s.Has(ctx, key)
	assert.NoError(t, err)
	assert.True(t, has)
}

func TestRollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	key := state.NewKey("payment", "TOKEN", "balance", "GBUYER")

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		if err := tx.Put(ctx, key, "100"); err != nil {
			return err
		}
		var inTx string
		found, err := tx.Get(ctx, key, &inTx)
		assert.True(t, found)
		assert.Equal(t, "100", inTx)
		if err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	has, err := s.Has(ctx, key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	key := state.NewKey("coordinator", "liquidity_destination")

	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		return tx.Put(ctx, key, "GPOOL")
	}))
	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		return tx.Delete(ctx, key)
	}))

	has, err := s.Has(ctx, key)
	assert.NoError(t, err)
	assert.False(t, has)
}
