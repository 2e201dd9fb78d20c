// Package reqid assigns an opaque id to each request context so telemetry
// subscribers can correlate events published at different points of the
// request lifecycle.
package reqid

import (
	"context"
	"math/rand/v2"
	"strconv"
)

// ID identifies a single request.
type ID int64

// String renders the id the way it appears in the X-Request-Id header.
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

type ctxKey struct{}

// NewContext returns a copy of parent carrying a freshly generated id.
func NewContext(parent context.Context) (context.Context, ID) {
	id := ID(rand.Int64())
	return context.WithValue(parent, ctxKey{}, id), id
}

// FromContext reports the id stored in ctx, if any.
func FromContext(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(ctxKey{}).(ID)
	return id, ok
}
