package executor

import (
	"context"
)

// Runtime is the host integration surface the Executor resolves through.
//
// General contract
//   - The Executor walks the selection tree recursively. Sibling field groups
//     of a query or subscription selection set may be resolved concurrently;
//     root mutation fields are always resolved one after another, in document
//     order. A field's sub-selections are only resolved after the field
//     itself has resolved.
//   - Errors returned from any method become path-tagged response errors. If
//     the field's declared type is Non-Null, the null propagates to the
//     nearest nullable ancestor.
//   - Implementations must be safe for concurrent calls and must not mutate
//     source or args values.
//
// Identifiers
//   - objectType is the schema type name (e.g. "User"); for root fields it is
//     the root operation type name.
//   - field is the field name on that type. source is the parent object value
//     (nil for root fields). args maps argument names to coerced Go values;
//     a key present with a nil value records an explicit null from the
//     caller, a missing key means the argument was omitted and had no
//     default.
type Runtime interface {
	// ResolveField resolves one field to its raw value, before completion.
	// Return (nil, nil) to produce null for a nullable field.
	ResolveField(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// ResolveType names the concrete object type for a value of an abstract
	// (interface or union) type. The name must be a possible type of
	// abstractType; anything else fails the surrounding subtree.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue converts a scalar or enum value into a JSON-safe Go
	// value. Enums serialize to their symbolic name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}
