package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hanpama/snapgraph/internal/errs"
)

func TestPartialSuccessKeepsSiblingData(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "fail":
				return nil, errors.New("backend unavailable")
			case "totalUsers":
				return 42, nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ totalUsers fail }`, nil)

	want := map[string]any{"totalUsers": 42, "fail": nil}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if diff := cmp.Diff(Path{"fail"}, res.Errors[0].Path); diff != "" {
		t.Fatalf("error path mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverErrorCarriesCode(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			if field == "user" {
				return nil, errs.New(errs.CodeNotFound, "user %q does not exist", "ghost")
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { id } }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if code := res.Errors[0].Extensions["code"]; code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", code)
	}
	want := map[string]any{"user": nil}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorPathIncludesListIndex(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			switch field {
			case "user":
				return map[string]any{"id": "u1"}, nil
			case "maybeFriends":
				return []any{map[string]any{"id": "f1"}, map[string]any{}}, nil
			case "id":
				if src, ok := source.(map[string]any); ok {
					return src["id"], nil
				}
				return nil, nil
			}
			return nil, nil
		},
	}

	res := execute(t, rt, `{ user { maybeFriends { id } } }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	// The second friend has no id; the non-null violation is located at its
	// exact position and the element nulls out while its sibling survives.
	wantPath := Path{"user", "maybeFriends", 1, "id"}
	if diff := cmp.Diff(wantPath, res.Errors[0].Path); diff != "" {
		t.Fatalf("error path mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"user": map[string]any{
		"maybeFriends": []any{map[string]any{"id": "f1"}, nil},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFieldRecordedAndDropped(t *testing.T) {
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			return 1, nil
		},
	}

	res := execute(t, rt, `{ totalUsers bogus }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if _, present := res.Data.(map[string]any)["bogus"]; present {
		t.Fatal("unknown field must not appear in the data map")
	}
}
