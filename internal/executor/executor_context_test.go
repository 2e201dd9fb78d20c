package executor

import (
	"context"
	"testing"
	"time"
)

// TestDeadlineAbortsRemainingMutationFields lets the first serial mutation
// field outlive the operation deadline. The second field must not reach its
// resolver; it is aborted between field resolutions with a timeout error.
func TestDeadlineAbortsRemainingMutationFields(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			if field == "first" {
				time.Sleep(60 * time.Millisecond)
			}
			return 1, nil
		},
	}

	res := executeCtx(t, ctx, rt, `mutation { first second }`, nil)

	for _, call := range rt.Calls() {
		if call.Field == "second" {
			t.Fatal("second field resolved after the deadline expired")
		}
	}
	var sawTimeout bool
	for _, e := range res.Errors {
		if e.Extensions["code"] == "TIMEOUT" {
			sawTimeout = true
		}
	}
	if !sawTimeout {
		t.Fatalf("expected a TIMEOUT coded error, got %v", res.Errors)
	}
	// second is non-null, so its abort nulls the whole mutation payload.
	if res.Data != nil {
		t.Fatalf("expected nil data after non-null abort, got %v", res.Data)
	}
}

// TestDeadlineErrorFromResolverIsTimeout classifies a context error returned
// by a resolver itself.
func TestDeadlineErrorFromResolverIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	res := executeCtx(t, ctx, rt, `{ fail }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if code := res.Errors[0].Extensions["code"]; code != "TIMEOUT" {
		t.Fatalf("expected TIMEOUT code, got %v", code)
	}
}
