package host

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
	"github.com/terracapital/marketplace/lib/state/memstore"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInvokeSerializesReadModifyWrite(t *testing.T) {
	store := memstore.New()
	rt := NewRuntime(store, nil)
	key := state.NewKey("test", "counter")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rt.Invoke(context.Background(), "increment", func(ctx context.Context, tx state.Tx) error {
				n := 0
				if _, err := tx.Get(ctx, key, &n); err != nil {
					return err
				}
				return tx.Put(ctx, key, n+1)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n := 0
	found, err := store.Get(context.Background(), key, &n)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 50, n)
}

func TestInvokeFailureDiscardsWrites(t *testing.T) {
	store := memstore.New()
	rt := NewRuntime(store, nil)
	err := rt.Invoke(context.Background(), "fail", func(ctx context.Context, tx state.Tx) error {
		if err := tx.Put(ctx, state.NewKey("test", "a"), 1); err != nil {
			return err
		}
		return market.Errorf(market.KindInsufficientAvailability, "nope")
	})
	assert.ErrorIs(t, err, market.ErrInsufficientAvailability)
	assert.Equal(t, 0, store.Len())
}

func TestSpansCarryErrorKind(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	rt := NewRuntime(memstore.New(), tp)

	_ = rt.View(context.Background(), "get_asset", func(ctx context.Context, rd state.Reader) error {
		return market.Errorf(market.KindNotFound, "asset 9 not found")
	})
	_ = rt.Invoke(context.Background(), "noop", func(ctx context.Context, tx state.Tx) error {
		return nil
	})

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "view get_asset", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	found := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "marketplace.error_kind" {
			found = true
			assert.Equal(t, "NOT_FOUND", attr.Value.AsString())
		}
	}
	assert.True(t, found)
	assert.Equal(t, "invoke noop", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
