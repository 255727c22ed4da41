package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/terracapital/marketplace/lib/state"
)

// Store keeps encoded values in memory. Transactions buffer their writes and apply
// them under the store lock on commit, so a failed transaction leaves no trace.
type Store struct {
	mu   sync.RWMutex
	data map[state.Key][]byte
}

func New() *Store {
	return &Store{data: make(map[state.Key][]byte)}
}

func (s *Store) Get(ctx context.Context, key state.Key, dst interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *Store) Has(ctx context.Context, key state.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{store: s, writes: map[state.Key][]byte{}, deletes: map[state.Key]bool{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range tx.deletes {
		delete(s.data, k)
	}
	for k, v := range tx.writes {
		s.data[k] = v
	}
	return nil
}

type memTx struct {
	store   *Store
	writes  map[state.Key][]byte
	deletes map[state.Key]bool
}

func (tx *memTx) lookup(key state.Key) ([]byte, bool) {
	if raw, ok := tx.writes[key]; ok {
		return raw, true
	}
	if tx.deletes[key] {
		return nil, false
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	raw, ok := tx.store.data[key]
	return raw, ok
}

func (tx *memTx) Get(ctx context.Context, key state.Key, dst interface{}) (bool, error) {
	raw, ok := tx.lookup(key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (tx *memTx) Has(ctx context.Context, key state.Key) (bool, error) {
	_, ok := tx.lookup(key)
	return ok, nil
}

func (tx *memTx) Put(ctx context.Context, key state.Key, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	delete(tx.deletes, key)
	tx.writes[key] = raw
	return nil
}

func (tx *memTx) Delete(ctx context.Context, key state.Key) error {
	delete(tx.writes, key)
	tx.deletes[key] = true
	return nil
}
