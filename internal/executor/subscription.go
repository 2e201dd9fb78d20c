package executor

import (
	language "github.com/hanpama/snapgraph/internal/language"

	"github.com/hanpama/snapgraph/internal/errs"
)

// SourceField is the single root field of a subscription operation: its
// schema name and coerced argument values. The transport uses it to pick the
// event stream before any execution happens; each delivered event is then run
// through ExecuteRequest with the payload as the initial value.
type SourceField struct {
	Name string
	Args map[string]any
}

// SubscriptionSourceField validates that the document's operation is a
// subscription with exactly one root field and returns that field with its
// arguments coerced against the schema.
func (e *Executor) SubscriptionSourceField(document *language.QueryDocument, operationName string, variableValues map[string]any) (*SourceField, error) {
	operation := getOperation(document, operationName)
	if operation == nil {
		return nil, errs.New(errs.CodeValidation, "operation not found")
	}
	if operation.Operation != language.Subscription {
		return nil, errs.New(errs.CodeValidation, "operation %q is not a subscription", operation.Operation)
	}
	rootType := e.schema.GetSubscriptionType()
	if rootType == nil {
		return nil, errs.New(errs.CodeValidation, "schema does not define a subscription type")
	}

	coerced, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}

	state := &executionState{
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: coerced,
	}
	groups := collectFields(state, rootType, operation.SelectionSet).orderedFields()
	if len(groups) != 1 {
		return nil, errs.New(errs.CodeValidation, "a subscription must select exactly one root field, got %d", len(groups))
	}

	field := groups[0].Fields[0]
	fieldDef := rootType.Field(field.Name)
	if fieldDef == nil {
		return nil, errs.New(errs.CodeValidation, "cannot subscribe to field %q on type %s", field.Name, rootType.Name)
	}
	args, err := coerceArgumentValues(e.schema, fieldDef, field.Arguments, coerced)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	return &SourceField{Name: field.Name, Args: args}, nil
}
