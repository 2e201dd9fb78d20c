package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	language "github.com/hanpama/snapgraph/internal/language"
	schema "github.com/hanpama/snapgraph/internal/schema"

	"github.com/hanpama/snapgraph/internal/errs"
)

// executionState holds the shared state of one request execution. Sibling
// field groups may run on separate goroutines, so the error list is guarded.
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any

	mu     sync.Mutex
	errors []GraphQLError
}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest executes one operation of the document and always returns a
// response: on partial failure the data is kept with nulled-out subtrees and
// the errors list records every failure with its path.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{errorAt(errs.Wrap(errs.CodeValidation, err), nil)}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
	}

	// Root mutation fields run serially in document order; everything else
	// may fan out.
	serial := operation.Operation == language.Mutation

	data, propagate := executeSelectionSet(ctx, state, rootType, operation.SelectionSet, initialValue, Path{}, serial)
	if propagate {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: data, Errors: state.errors}
}

// fieldOutcome is the per-field-group result of a selection set.
type fieldOutcome struct {
	value     any
	include   bool // false drops the entry from the result map entirely
	propagate bool // non-null field resolved to null; parent must null out
}

// executeSelectionSet resolves every collected field group of the selection
// set against objectValue. It returns (nil, true) when a non-null child
// nulled out, pushing the null up to the nearest nullable ancestor.
func executeSelectionSet(ctx context.Context, state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path, serial bool) (map[string]any, bool) {
	groups := collectFields(state, objectType, selectionSet).orderedFields()
	outcomes := make([]fieldOutcome, len(groups))

	if serial {
		for i, group := range groups {
			outcomes[i] = executeFieldGroup(ctx, state, objectType, objectValue, group, appendPath(path, group.ResponseName))
		}
	} else {
		var wg sync.WaitGroup
		for i, group := range groups {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcomes[i] = executeFieldGroup(ctx, state, objectType, objectValue, group, appendPath(path, group.ResponseName))
			}()
		}
		wg.Wait()
	}

	result := make(map[string]any, len(groups))
	for i, group := range groups {
		if outcomes[i].propagate {
			return nil, true
		}
		if !outcomes[i].include {
			continue
		}
		result[group.ResponseName] = outcomes[i].value
	}
	return result, false
}

func executeFieldGroup(ctx context.Context, state *executionState, objectType *schema.Type, objectValue any, group collectedField, path Path) fieldOutcome {
	field := group.Fields[0]

	if field.Name == "__typename" {
		return fieldOutcome{value: objectType.Name, include: true}
	}

	fieldDef := objectType.Field(field.Name)
	if fieldDef == nil {
		state.addError(GraphQLError{
			Message: fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, objectType.Name),
			Path:    path,
		})
		return fieldOutcome{}
	}

	// The operation deadline is honored between field resolutions: a subtree
	// that has not started when the deadline passes is aborted here.
	if err := ctx.Err(); err != nil {
		state.addError(errorAt(fmt.Errorf("field aborted: %w", err), path))
		return fieldOutcome{include: true, propagate: schema.IsNonNull(fieldDef.Type)}
	}

	args, err := coerceArgumentValues(state.schema, fieldDef, field.Arguments, state.variableValues)
	if err != nil {
		state.addError(errorAt(errs.Wrap(errs.CodeValidation, err), path))
		return fieldOutcome{include: true, propagate: schema.IsNonNull(fieldDef.Type)}
	}

	value, err := state.runtime.ResolveField(ctx, objectType.Name, field.Name, objectValue, args)
	if err != nil {
		state.addError(errorAt(err, path))
		return fieldOutcome{include: true, propagate: schema.IsNonNull(fieldDef.Type)}
	}

	completed := completeValue(ctx, state, fieldDef.Type, group.Fields, value, path)
	if isNullish(completed) {
		return fieldOutcome{include: true, propagate: schema.IsNonNull(fieldDef.Type)}
	}
	return fieldOutcome{value: completed, include: true}
}

// completeValue completes a resolved value against its declared type.
func completeValue(ctx context.Context, state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(GraphQLError{
					Message: fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)),
					Path:    path,
				})
			}
			return nil
		}
		return completeValue(ctx, state, schema.Unwrap(fieldType), fields, result, path)
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(ctx, state, fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(GraphQLError{Message: fmt.Sprintf("Unknown type: %s", namedType), Path: path})
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := state.runtime.SerializeLeafValue(ctx, namedType, result)
		if err != nil {
			state.addError(errorAt(err, path))
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return completeObjectValue(ctx, state, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(ctx, state, typeObj, fields, result, path)
	default:
		state.addError(GraphQLError{Message: fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), Path: path})
		return nil
	}
}

func completeListValue(ctx context.Context, state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.addError(GraphQLError{Message: fmt.Sprintf("Expected list value, got %T", result), Path: path})
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		v := completeValue(ctx, state, inner, fields, item, appendPath(path, i))
		if schema.IsNonNull(inner) && isNullish(v) {
			// Inner completion already recorded the error; null the whole list.
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(ctx context.Context, state *executionState, objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	value, propagate := executeSelectionSet(ctx, state, objectType, sub, result, path, false)
	if propagate {
		return nil
	}
	return value
}

// completeAbstractValue dispatches a union or interface value to its concrete
// object type. Dispatch reads the runtime type tag; an unknown or
// out-of-family tag fails the subtree.
func completeAbstractValue(ctx context.Context, state *executionState, abstractType *schema.Type, fields []*language.Field, result any, path Path) any {
	typeName, err := state.runtime.ResolveType(ctx, abstractType.Name, result)
	if err != nil {
		state.addError(errorAt(errs.Wrap(errs.CodeTypeResolution, err), path))
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject || !state.schema.Implements(objectType, abstractType.Name) {
		state.addError(errorAt(
			errs.New(errs.CodeTypeResolution, "%q is not a possible type of %s", typeName, abstractType.Name),
			path,
		))
		return nil
	}
	return completeObjectValue(ctx, state, objectType, fields, result, path)
}

func (state *executionState) addError(err GraphQLError) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.errors = append(state.errors, err)
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
