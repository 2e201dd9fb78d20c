package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestQuerySiblingsRunConcurrently blocks each of two sibling resolvers until
// the other has started. Serial execution could never satisfy both.
func TestQuerySiblingsRunConcurrently(t *testing.T) {
	leftStarted := make(chan struct{})
	rightStarted := make(chan struct{})

	await := func(started chan struct{}, other chan struct{}) (any, error) {
		close(started)
		select {
		case <-other:
			return "ok", nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("sibling never started")
		}
	}

	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "left":
				return await(leftStarted, rightStarted)
			case "right":
				return await(rightStarted, leftStarted)
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ left right }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"left": "ok", "right": "ok"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

// TestNestedFieldsWaitForParent verifies a child resolver only sees a parent
// value that has fully resolved.
func TestNestedFieldsWaitForParent(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "user":
				time.Sleep(10 * time.Millisecond)
				return map[string]any{"id": "u1", "name": "Glen"}, nil
			case "id", "name":
				src, ok := source.(map[string]any)
				if !ok {
					return nil, errors.New("child resolved before parent")
				}
				return src[field], nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { id name } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"user": map[string]any{"id": "u1", "name": "Glen"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
