package executor

import (
	"context"
	"errors"

	"github.com/hanpama/snapgraph/internal/errs"
)

// Path locates a response position: field response names and list indexes.
type Path []PathElement

type PathElement any

// GraphQLError is a located execution error. Extensions carries the machine
// readable "code" when the cause was classified.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult is the partial-success response shape: data is always
// present (possibly nil after propagation) alongside the error list.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// errorAt shapes a resolver error into a located response error, attaching
// the classification code. A deadline cause is always reported as a timeout
// even when the resolver did not classify it.
func errorAt(err error, path Path) GraphQLError {
	ge := GraphQLError{Message: err.Error(), Path: path}
	code, ok := errs.CodeOf(err)
	if !ok && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		code, ok = errs.CodeTimeout, true
	}
	if ok {
		ge.Extensions = map[string]any{"code": string(code)}
	}
	return ge
}
