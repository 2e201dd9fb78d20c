package executor

import (
	"context"
	"testing"

	language "github.com/hanpama/snapgraph/internal/language"
	schema "github.com/hanpama/snapgraph/internal/schema"
)

// buildTestSchema assembles the fixture registry shared by the executor
// tests: a small social graph with an interface family, a union family, and
// root types for every operation kind.
func buildTestSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.NewSchema("executor test schema").WithBuiltins().
		SetQueryType("Query").
		SetMutationType("Mutation").
		SetSubscriptionType("Subscription")

	s.AddType(schema.NewType("Color", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("RED", "")).
		AddEnumValue(schema.NewEnumValue("GREEN", "")))

	s.AddType(schema.NewType("PageInput", schema.TypeKindInputObject, "").
		AddInputField(schema.NewInputValue("first", "", schema.NamedType("Int")).SetDefault(2)).
		AddInputField(schema.NewInputValue("start", "", schema.NamedType("Int")).SetDefault(0)))

	s.AddType(schema.NewType("User", schema.TypeKindObject, "").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID")))).
		AddField(schema.NewField("name", "", schema.NamedType("String"))).
		AddField(schema.NewField("friends", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("User")))))).
		AddField(schema.NewField("maybeFriends", "", schema.ListType(schema.NamedType("User")))))

	s.AddType(schema.NewType("Character", schema.TypeKindInterface, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddPossibleType("Human").
		AddPossibleType("Droid"))
	s.AddType(schema.NewType("Human", schema.TypeKindObject, "").
		AddInterface("Character").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("homePlanet", "", schema.NamedType("String"))))
	s.AddType(schema.NewType("Droid", schema.TypeKindObject, "").
		AddInterface("Character").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("primaryFunction", "", schema.NamedType("String"))))

	s.AddType(schema.NewType("Pet", schema.TypeKindUnion, "").
		AddPossibleType("Dog").
		AddPossibleType("Cat"))
	s.AddType(schema.NewType("Dog", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("barkVolume", "", schema.NamedType("Int"))))
	s.AddType(schema.NewType("Cat", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String")))))

	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("user", "", schema.NamedType("User"))).
		AddField(schema.NewField("hero", "", schema.NamedType("Character"))).
		AddField(schema.NewField("pet", "", schema.NamedType("Pet"))).
		AddField(schema.NewField("allUsers", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("User"))))).
			AddArgument(schema.NewInputValue("paging", "", schema.NamedType("PageInput")).
				SetDefault(map[string]any{"first": 2, "start": 0})).
			AddArgument(schema.NewInputValue("color", "", schema.NamedType("Color")).
				SetDefault(schema.EnumLiteral("RED")))).
		AddField(schema.NewField("totalUsers", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("fail", "", schema.NamedType("String"))).
		AddField(schema.NewField("mustSucceed", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("left", "", schema.NamedType("String"))).
		AddField(schema.NewField("right", "", schema.NamedType("String"))))

	s.AddType(schema.NewType("Mutation", schema.TypeKindObject, "").
		AddField(schema.NewField("first", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("second", "", schema.NonNullType(schema.NamedType("Int")))).
		AddField(schema.NewField("third", "", schema.NamedType("Int"))))

	s.AddType(schema.NewType("Subscription", schema.TypeKindObject, "").
		AddField(schema.NewField("tick", "", schema.NonNullType(schema.NamedType("Int")))))

	if err := s.Validate(); err != nil {
		t.Fatalf("test schema invalid: %v", err)
	}
	return s
}

func mustParse(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return doc
}

func execute(t *testing.T, rt Runtime, query string, vars map[string]any) *ExecutionResult {
	t.Helper()
	return executeCtx(t, context.Background(), rt, query, vars)
}

func executeCtx(t *testing.T, ctx context.Context, rt Runtime, query string, vars map[string]any) *ExecutionResult {
	t.Helper()
	e := NewExecutor(rt, buildTestSchema(t))
	return e.ExecuteRequest(ctx, mustParse(t, query), "", vars, nil)
}
