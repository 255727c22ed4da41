package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/terracapital/marketplace/lib/state"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCommitAppliesWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := state.NewKey("test", "record", 1)
	assert.Equal(t, state.Key("test/record/1"), key)

	err := s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		return tx.Put(ctx, key, record{Name: "a", Count: 1})
	})
	assert.NoError(t, err)

	var got record
	found, err := s.Get(ctx, key, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record{Name: "a", Count: 1}, got)
}

func TestFailedTxLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := state.NewKey("test", "record", 1)
	assert.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		return tx.Put(ctx, key, record{Name: "before"})
	}))

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		if err := tx.Put(ctx, key, record{Name: "after"}); err != nil {
			return err
		}
		if err := tx.Put(ctx, state.NewKey("test", "other"), 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var got record
	_, err = s.Get(ctx, key, &got)
	assert.NoError(t, err)
	assert.Equal(t, "before", got.Name)
	assert.Equal(t, 1, s.Len())
}

func TestTxReadsItsOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := state.NewKey("test", "k")
	err := s.RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		assert.NoError(t, tx.Put(ctx, key, 41))
		var v int
		found, err := tx.Get(ctx, key, &v)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 41, v)

		assert.NoError(t, tx.Delete(ctx, key))
		has, err := tx.Has(ctx, key)
		assert.NoError(t, err)
		assert.False(t, has)
		return nil
	})
	assert.NoError(t, err)

	has, err := s.Has(ctx, key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().RunInTx(ctx, func(ctx context.Context, tx state.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
