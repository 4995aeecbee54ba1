// Package correlation tags webhook processing with a ULID so an acknowledged
// delivery that failed downstream can be found again across log lines.
package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type idKey struct{}

// WithID stores a correlation id on the context. Empty ids are ignored.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the correlation id carried by ctx, or "".
func IDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

// Ensure returns ctx carrying a correlation id, minting a ULID when none is
// present yet. ULIDs sort by time, which keeps grepped log trails in delivery
// order.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := IDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return WithID(ctx, id), id
}
