package executor

import (
	"fmt"
	"strconv"
	"strings"

	language "github.com/hanpama/snapgraph/internal/language"
	schema "github.com/hanpama/snapgraph/internal/schema"
)

// coerceVariableValues coerces variable values according to their types
func coerceVariableValues(
	s *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = astValueToGo(varDef.DefaultValue)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(s, val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces the supplied arguments of one field and merges
// declared defaults. A default applies only when the argument was omitted; an
// explicit null is kept as a present nil entry and never rewritten.
func coerceArgumentValues(
	s *schema.Schema,
	fieldDef *schema.Field,
	arguments language.ArgumentList,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, arg := range arguments {
		argDef := fieldDef.Argument(arg.Name)
		if argDef == nil {
			return nil, fmt.Errorf("unknown argument %q on field %q", arg.Name, fieldDef.Name)
		}
		// An argument bound to an unprovided variable counts as omitted.
		if arg.Value != nil && arg.Value.Kind == language.Variable {
			if _, ok := lookupVariable(variableValues, arg.Value.Raw); !ok {
				continue
			}
		}
		val := valueFromASTWithVars(arg.Value, variableValues)
		cv, err := coerceValue(s, val, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q cannot be coerced: %w", arg.Name, err)
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if argDef.HasDefault {
			coerced[argDef.Name] = normalizeDefault(argDef.DefaultValue)
		} else if schema.IsNonNull(argDef.Type) {
			return nil, fmt.Errorf("argument %q of required type was not provided", argDef.Name)
		}
	}
	return coerced, nil
}

func lookupVariable(variableValues map[string]any, name string) (any, bool) {
	if v, ok := variableValues[name]; ok {
		return v, true
	}
	if v, ok := variableValues[strings.TrimPrefix(name, "$")]; ok {
		return v, true
	}
	return nil, false
}

// valueFromASTWithVars converts an AST value to a runtime value with variable substitution
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	if value.Kind == language.Variable {
		v, _ := lookupVariable(variableValues, value.Raw)
		return v
	}
	return astValueToGo(value)
}

// astValueToGo converts an AST value to a Go value
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

// coerceValue coerces a value to the given type reference, consulting the
// registry for enum symbols and input object shapes.
func coerceValue(s *schema.Schema, value any, targetType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(s, value, schema.Unwrap(targetType))
	}

	if value == nil {
		return nil, nil
	}

	if schema.IsList(targetType) {
		return coerceListValue(s, value, targetType)
	}

	namedType := schema.GetNamedType(targetType)
	switch namedType {
	case "Int":
		return coerceToInt(value)
	case "Float":
		return coerceToFloat(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	case "ID":
		return coerceToID(value)
	}

	typeObj := s.Types[namedType]
	if typeObj == nil {
		// Unregistered custom scalar; pass through for the runtime to parse.
		return value, nil
	}
	switch typeObj.Kind {
	case schema.TypeKindEnum:
		return coerceEnumValue(typeObj, value)
	case schema.TypeKindInputObject:
		return coerceInputObjectValue(s, typeObj, value)
	default:
		return value, nil
	}
}

func coerceListValue(s *schema.Schema, value any, listType *schema.TypeRef) (any, error) {
	innerType := schema.Unwrap(listType)
	if slice, ok := value.([]any); ok {
		coercedSlice := make([]any, len(slice))
		for i, item := range slice {
			coercedItem, err := coerceValue(s, item, innerType)
			if err != nil {
				return nil, err
			}
			coercedSlice[i] = coercedItem
		}
		return coercedSlice, nil
	}

	// Single value becomes a list of one
	coercedItem, err := coerceValue(s, value, innerType)
	if err != nil {
		return nil, err
	}
	return []any{coercedItem}, nil
}

func coerceEnumValue(enumType *schema.Type, value any) (any, error) {
	var symbol string
	switch v := value.(type) {
	case string:
		symbol = v
	case schema.EnumLiteral:
		symbol = string(v)
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", value, value, enumType.Name)
	}
	for _, ev := range enumType.EnumValues {
		if ev.Name == symbol {
			return symbol, nil
		}
	}
	return nil, fmt.Errorf("value %q is not a member of enum %s", symbol, enumType.Name)
}

// coerceInputObjectValue checks the shape of an input object and applies
// declared input-field defaults for omitted keys. A key supplied as explicit
// null stays null; defaults never overwrite it.
func coerceInputObjectValue(s *schema.Schema, inputType *schema.Type, value any) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to input object %s", value, inputType.Name)
	}
	coerced := make(map[string]any, len(obj))
	for name, raw := range obj {
		fieldDef := inputType.InputField(name)
		if fieldDef == nil {
			return nil, fmt.Errorf("unknown field %q on input object %s", name, inputType.Name)
		}
		cv, err := coerceValue(s, raw, fieldDef.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		coerced[name] = cv
	}
	for _, fieldDef := range inputType.InputFields {
		if _, ok := coerced[fieldDef.Name]; ok {
			continue
		}
		if fieldDef.HasDefault {
			coerced[fieldDef.Name] = normalizeDefault(fieldDef.DefaultValue)
		} else if schema.IsNonNull(fieldDef.Type) {
			return nil, fmt.Errorf("field %q of input object %s is required", fieldDef.Name, inputType.Name)
		}
	}
	return coerced, nil
}

// normalizeDefault converts declared default values into the same shapes
// caller-supplied values coerce to.
func normalizeDefault(v any) any {
	switch d := v.(type) {
	case schema.EnumLiteral:
		return string(d)
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, item := range d {
			out[k] = normalizeDefault(item)
		}
		return out
	case []any:
		out := make([]any, len(d))
		for i, item := range d {
			out[i] = normalizeDefault(item)
		}
		return out
	default:
		return v
	}
}

func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("cannot coerce non-integral %v to int", v)
		}
		return int(v), nil
	case float32:
		return coerceToInt(float64(v))
	case string:
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceToString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
