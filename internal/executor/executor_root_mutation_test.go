package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestRootMutationFieldsRunSerially resolves three root mutation fields whose
// resolvers sleep longest first. Concurrent execution would finish them out
// of order; serial execution preserves document order.
func TestRootMutationFieldsRunSerially(t *testing.T) {
	var mu sync.Mutex
	var finished []string

	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "first":
				time.Sleep(30 * time.Millisecond)
			case "second":
				time.Sleep(15 * time.Millisecond)
			}
			mu.Lock()
			finished = append(finished, field)
			mu.Unlock()
			return 1, nil
		},
	}

	res := execute(t, rt, `mutation { first second third }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, finished); diff != "" {
		t.Fatalf("execution order mismatch (-want +got):\n%s", diff)
	}
}

// TestMutationChildSelectionsStillFanOut makes sure serial execution applies
// to root mutation fields only, not to the selection sets beneath them.
func TestMutationChildSelectionsFollowRoot(t *testing.T) {
	var order []string
	var mu sync.Mutex

	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			mu.Lock()
			order = append(order, field)
			mu.Unlock()
			return 7, nil
		},
	}

	res := execute(t, rt, `mutation { first second }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"first": 7, "second": 7}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
}
