package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmptyNonNullListStaysEmpty(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "user":
				return map[string]any{"id": "u1"}, nil
			case "friends":
				return []any{}, nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { friends { id } } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"user": map[string]any{"friends": []any{}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestNullElementPropagatesToNearestNullableAncestor(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "user":
				return map[string]any{"id": "u1"}, nil
			case "friends":
				// The middle element violates the [User!]! element type.
				return []any{map[string]any{"id": "f1"}, nil, map[string]any{"id": "f3"}}, nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { id friends { id } } }`, nil)

	// friends is non-null, so the null list climbs to user, the nearest
	// nullable ancestor.
	want := map[string]any{"user": nil}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected a located error for the null list element")
	}
	wantPath := Path{"user", "friends", 1}
	if diff := cmp.Diff(wantPath, res.Errors[0].Path); diff != "" {
		t.Fatalf("error path mismatch (-want +got):\n%s", diff)
	}
}

func TestNullableListKeepsNullElements(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "user":
				return map[string]any{"id": "u1"}, nil
			case "maybeFriends":
				return []any{map[string]any{"id": "f1"}, nil}, nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { maybeFriends { id } } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"user": map[string]any{
		"maybeFriends": []any{map[string]any{"id": "f1"}, nil},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullRootFieldNullsEntireData(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			return nil, nil
		},
	}

	res := execute(t, rt, `{ mustSucceed }`, nil)

	if res.Data != nil {
		t.Fatalf("expected nil data after root non-null violation, got %v", res.Data)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", res.Errors)
	}
}

func TestTypedNilResolvesToNull(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			var m map[string]any // typed nil
			return m, nil
		},
	}

	res := execute(t, rt, `{ user { id } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"user": nil}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypeTagFailsSubtree(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			return taggedValue{tag: "Spaceship"}, nil
		},
	}

	res := execute(t, rt, `{ hero { name } }`, nil)

	want := map[string]any{"hero": nil}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if code := res.Errors[0].Extensions["code"]; code != "TYPE_RESOLUTION" {
		t.Fatalf("expected TYPE_RESOLUTION code, got %v", code)
	}
}
