// Package eventbus is the in-process telemetry dispatch: components publish
// typed events and observers such as the tracing subscriber register handlers
// per event type. Delivery is synchronous on the publishing goroutine, so
// handlers must be cheap. For subscriber-facing fan-out with queueing and
// overflow policy see internal/broker.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

type registration struct {
	id uint64
	fn func(context.Context, any)
}

// Bus dispatches events to handlers registered for their dynamic type.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	byType map[reflect.Type][]registration
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{byType: make(map[reflect.Type][]registration)}
}

func (b *Bus) register(t reflect.Type, fn func(context.Context, any)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.byType[t] = append(b.byType[t], registration{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		regs := b.byType[t]
		for i, reg := range regs {
			if reg.id == id {
				regs = append(regs[:i], regs[i+1:]...)
				break
			}
		}
		if len(regs) == 0 {
			delete(b.byType, t)
		} else {
			b.byType[t] = regs
		}
	}
}

func (b *Bus) emit(ctx context.Context, e any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	regs := append([]registration(nil), b.byType[reflect.TypeOf(e)]...)
	b.mu.RUnlock()
	for _, reg := range regs {
		reg.fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use installs b as the process-wide bus. Passing nil disables publishing.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h with the process-wide bus for events of type T.
// The returned function removes the registration.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := global.Load()
	if b == nil {
		return func() {}
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.register(t, func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish sends e through the process-wide bus.
func Publish[T any](ctx context.Context, e T) {
	b := global.Load()
	if b == nil {
		return
	}
	b.emit(ctx, e)
}
