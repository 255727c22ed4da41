// Package host runs module operations the way the ledger runs contract calls: one
// invocation at a time, each inside a single all-or-nothing transaction.
package host

import (
	"context"
	"sync"

	"github.com/terracapital/marketplace/lib/market"
	"github.com/terracapital/marketplace/lib/state"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/terracapital/marketplace/lib/host"

type Runtime struct {
	store  state.Store
	tracer trace.Tracer
	mu     sync.Mutex
}

// NewRuntime wraps store. A nil tracer provider means the global one.
func NewRuntime(store state.Store, tp trace.TracerProvider) *Runtime {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Runtime{store: store, tracer: tp.Tracer(tracerName)}
}

// Invoke runs fn as one serialized invocation. Every write fn makes through tx is
// committed together, or none is when fn fails. fn must not call Invoke.
func (r *Runtime) Invoke(ctx context.Context, name string, fn func(ctx context.Context, tx state.Tx) error) error {
	ctx, span := r.tracer.Start(ctx, "invoke "+name, trace.WithAttributes(attribute.String("marketplace.operation", name)))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.store.RunInTx(ctx, fn)
	record(span, err)
	return err
}

// View runs a read-only operation against committed state.
func (r *Runtime) View(ctx context.Context, name string, fn func(ctx context.Context, rd state.Reader) error) error {
	ctx, span := r.tracer.Start(ctx, "view "+name, trace.WithAttributes(attribute.String("marketplace.operation", name)))
	defer span.End()

	err := fn(ctx, r.store)
	record(span, err)
	return err
}

func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	if kind := market.KindOf(err); kind != "" {
		span.SetAttributes(attribute.String("marketplace.error_kind", string(kind)))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
