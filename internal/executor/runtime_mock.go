package executor

import (
	"context"
	"fmt"
	"sync"
)

// ResolveCall records one ResolveField invocation on the mock.
type ResolveCall struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// MockRuntime is a configurable Runtime for tests. Unset hooks fall back to
// simple defaults: field lookup on map sources, type tags for abstract
// dispatch, pass-through serialization.
type MockRuntime struct {
	mu    sync.Mutex
	calls []ResolveCall

	ResolveFieldFn func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error)
	ResolveTypeFn  func(ctx context.Context, abstractType string, value any) (string, error)
	SerializeFn    func(ctx context.Context, typeName string, value any) (any, error)
}

var _ Runtime = (*MockRuntime)(nil)

func (m *MockRuntime) ResolveField(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ResolveCall{ObjectType: objectType, Field: field, Source: source, Args: args})
	m.mu.Unlock()

	if m.ResolveFieldFn != nil {
		return m.ResolveFieldFn(ctx, objectType, field, source, args)
	}
	if src, ok := source.(map[string]any); ok {
		return src[field], nil
	}
	return nil, nil
}

func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m.ResolveTypeFn != nil {
		return m.ResolveTypeFn(ctx, abstractType, value)
	}
	if tagged, ok := value.(interface{ TypeTag() string }); ok {
		return tagged.TypeTag(), nil
	}
	if src, ok := value.(map[string]any); ok {
		if name, ok := src["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s value %T", abstractType, value)
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if m.SerializeFn != nil {
		return m.SerializeFn(ctx, typeName, value)
	}
	return value, nil
}

// Calls returns a snapshot of the recorded ResolveField invocations.
func (m *MockRuntime) Calls() []ResolveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ResolveCall(nil), m.calls...)
}

// CallsTo returns the recorded invocations of one field.
func (m *MockRuntime) CallsTo(objectType, field string) []ResolveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ResolveCall
	for _, c := range m.calls {
		if c.ObjectType == objectType && c.Field == field {
			out = append(out, c)
		}
	}
	return out
}
