package introspection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/snapgraph/internal/executor"
	language "github.com/hanpama/snapgraph/internal/language"
	schema "github.com/hanpama/snapgraph/internal/schema"
)

// noopRuntime implements executor.Runtime with no behaviour.
type noopRuntime struct{}

func (noopRuntime) ResolveField(context.Context, string, string, any, map[string]any) (any, error) {
	return nil, nil
}

func (noopRuntime) ResolveType(context.Context, string, any) (string, error) {
	return "", nil
}

func (noopRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := schema.NewSchema("").WithBuiltins().SetQueryType("Query")
	s.AddType(schema.NewType("Color", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("RED", "")).
		AddEnumValue(schema.NewEnumValue("SEPIA", "").Deprecate("film is gone")))
	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(schema.NewField("hello", "", schema.NamedType("String"))).
		AddField(schema.NewField("greet", "", schema.NamedType("String")).
			AddArgument(schema.NewInputValue("name", "", schema.NamedType("String")).SetDefault("world"))))
	require.NoError(t, s.Validate())
	return s
}

func run(t *testing.T, query string) map[string]any {
	t.Helper()
	sch := buildSchema(t)
	wrapper := Wrap(noopRuntime{}, sch)
	exec := executor.NewExecutor(wrapper.Runtime, wrapper.Schema)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	return res.Data.(map[string]any)
}

func TestSchemaQueryType(t *testing.T) {
	data := run(t, `{__schema{queryType{name kind}}}`)
	qt := data["__schema"].(map[string]any)["queryType"].(map[string]any)
	assert.Equal(t, "Query", qt["name"])
	assert.Equal(t, "OBJECT", qt["kind"])
}

func TestTypeLookupAndWrappedRefs(t *testing.T) {
	data := run(t, `{__type(name: "Query"){fields{name type{kind name}}}}`)
	fields := data["__type"].(map[string]any)["fields"].([]any)
	require.Len(t, fields, 2)
	hello := fields[0].(map[string]any)
	assert.Equal(t, "hello", hello["name"])
	assert.Equal(t, "SCALAR", hello["type"].(map[string]any)["kind"])

	data = run(t, `{__schema{types{name}}}`)
	names := []string{}
	for _, v := range data["__schema"].(map[string]any)["types"].([]any) {
		names = append(names, v.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, "Color")
	assert.Contains(t, names, "__Type")
}

func TestEnumValuesHideDeprecatedByDefault(t *testing.T) {
	data := run(t, `{__type(name: "Color"){enumValues{name}}}`)
	vals := data["__type"].(map[string]any)["enumValues"].([]any)
	require.Len(t, vals, 1)
	assert.Equal(t, "RED", vals[0].(map[string]any)["name"])

	data = run(t, `{__type(name: "Color"){enumValues(includeDeprecated: true){name deprecationReason}}}`)
	vals = data["__type"].(map[string]any)["enumValues"].([]any)
	require.Len(t, vals, 2)
	assert.Equal(t, "film is gone", vals[1].(map[string]any)["deprecationReason"])
}

func TestArgumentDefaultValueRendering(t *testing.T) {
	data := run(t, `{__type(name: "Query"){fields{name args{name defaultValue}}}}`)
	fields := data["__type"].(map[string]any)["fields"].([]any)
	greet := fields[1].(map[string]any)
	args := greet["args"].([]any)
	require.Len(t, args, 1)
	assert.Equal(t, `"world"`, args[0].(map[string]any)["defaultValue"])
}

func TestTypenameWithoutWrapper(t *testing.T) {
	sch := buildSchema(t)
	exec := executor.NewExecutor(noopRuntime{}, sch)
	doc, err := language.ParseQuery("{__typename}")
	require.NoError(t, err)
	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, "Query", res.Data.(map[string]any)["__typename"])
}

func TestOriginalSchemaIsNotMutated(t *testing.T) {
	sch := buildSchema(t)
	before := len(sch.Types)
	Wrap(noopRuntime{}, sch)
	assert.Len(t, sch.Types, before)
	assert.Nil(t, sch.GetQueryType().Field("__schema"))
}
