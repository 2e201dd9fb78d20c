package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type taggedValue struct {
	tag    string
	fields map[string]any
}

func (v taggedValue) TypeTag() string { return v.tag }

func taggedResolver(values map[string]any) *MockRuntime {
	return &MockRuntime{
		ResolveFieldFn: func(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
			if tv, ok := source.(taggedValue); ok {
				return tv.fields[field], nil
			}
			if src, ok := source.(map[string]any); ok {
				return src[field], nil
			}
			return values[field], nil
		},
	}
}

func TestUnionFragmentsMatchExactly(t *testing.T) {
	rt := taggedResolver(map[string]any{
		"pet": taggedValue{tag: "Dog", fields: map[string]any{"name": "Rex", "barkVolume": 9}},
	})

	res := execute(t, rt, `{
		pet {
			__typename
			... on Dog { barkVolume }
			... on Cat { name }
		}
	}`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"pet": map[string]any{"__typename": "Dog", "barkVolume": 9}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestInterfaceFragmentAppliesToAllVariants(t *testing.T) {
	rt := taggedResolver(map[string]any{
		"hero": taggedValue{tag: "Droid", fields: map[string]any{"name": "R2", "primaryFunction": "astromech"}},
	})

	res := execute(t, rt, `{
		hero {
			... on Character { name }
			... on Human { homePlanet }
			... on Droid { primaryFunction }
		}
	}`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"hero": map[string]any{"name": "R2", "primaryFunction": "astromech"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestNoMatchingFragmentYieldsEmptySelection(t *testing.T) {
	rt := taggedResolver(map[string]any{
		"pet": taggedValue{tag: "Cat", fields: map[string]any{"name": "Mia"}},
	})

	res := execute(t, rt, `{ pet { ... on Dog { barkVolume } } }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("no matching fragment is not an error, got: %v", res.Errors)
	}
	want := map[string]any{"pet": map[string]any{}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestNamedFragmentSpreadAndDirectives(t *testing.T) {
	rt := taggedResolver(map[string]any{
		"user": map[string]any{"id": "u1", "name": "Glen"},
	})

	res := execute(t, rt, `
		query ($withName: Boolean!, $skipID: Boolean!) {
			user {
				...userFields
				id @skip(if: $skipID)
			}
		}
		fragment userFields on User {
			name @include(if: $withName)
		}
	`, map[string]any{"withName": true, "skipID": true})

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"user": map[string]any{"name": "Glen"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAliasesKeepBothEntries(t *testing.T) {
	rt := taggedResolver(map[string]any{"totalUsers": 3})

	res := execute(t, rt, `{ a: totalUsers b: totalUsers }`, nil)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	want := map[string]any{"a": 3, "b": 3}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
