package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func capturedArgs(t *testing.T, query string, vars map[string]any) (map[string]any, *ExecutionResult) {
	t.Helper()
	var captured map[string]any
	rt := &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			if field == "allUsers" {
				captured = args
			}
			return []any{}, nil
		},
	}
	res := execute(t, rt, query, vars)
	return captured, res
}

func TestOmittedArgumentsGetDefaults(t *testing.T) {
	args, res := capturedArgs(t, `{ allUsers { id } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{
		"paging": map[string]any{"first": 2, "start": 0},
		"color":  "RED",
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestExplicitNullIsNotRewritten(t *testing.T) {
	args, res := capturedArgs(t, `{ allUsers(paging: null) { id } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	v, present := args["paging"]
	if !present {
		t.Fatal("explicit null must keep the argument entry present")
	}
	if v != nil {
		t.Fatalf("explicit null must stay null, got %v", v)
	}
}

func TestInputObjectFieldDefaultsFillOmittedKeys(t *testing.T) {
	args, res := capturedArgs(t, `{ allUsers(paging: {start: 5}) { id } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"first": 2, "start": 5}
	if diff := cmp.Diff(want, args["paging"]); diff != "" {
		t.Fatalf("paging mismatch (-want +got):\n%s", diff)
	}
}

func TestUnprovidedVariableCountsAsOmission(t *testing.T) {
	args, res := capturedArgs(t, `query ($p: PageInput) { allUsers(paging: $p) { id } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"first": 2, "start": 0}
	if diff := cmp.Diff(want, args["paging"]); diff != "" {
		t.Fatalf("paging mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownEnumSymbolIsValidationError(t *testing.T) {
	_, res := capturedArgs(t, `{ allUsers(color: BLUE) { id } }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %v", res.Errors)
	}
	if code := res.Errors[0].Extensions["code"]; code != "VALIDATION" {
		t.Fatalf("expected VALIDATION code, got %v", code)
	}
	if res.Data != nil {
		t.Fatalf("non-null field with invalid argument must null the data, got %v", res.Data)
	}
}

func TestFractionalIntIsValidationError(t *testing.T) {
	_, res := capturedArgs(t,
		`query ($p: PageInput) { allUsers(paging: $p) { id } }`,
		map[string]any{"p": map[string]any{"first": 2.5}},
	)

	if len(res.Errors) == 0 {
		t.Fatal("expected a coercion error for fractional Int")
	}
}

func TestMissingRequiredVariableFailsRequest(t *testing.T) {
	rt := &MockRuntime{}
	res := execute(t, rt, `query ($must: Boolean!) { totalUsers @include(if: $must) }`, nil)

	if len(res.Errors) != 1 {
		t.Fatalf("expected one request error, got %v", res.Errors)
	}
	if code := res.Errors[0].Extensions["code"]; code != "VALIDATION" {
		t.Fatalf("expected VALIDATION code, got %v", code)
	}
	if res.Data != nil {
		t.Fatalf("expected no data, got %v", res.Data)
	}
}
