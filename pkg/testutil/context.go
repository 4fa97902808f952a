package testutil

import (
	"context"
	"time"

	"medivault/pkg/requestcontext"
)

// FixedDate is a stable reference date for retention and consent tests.
var FixedDate = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ContextAt returns a background context whose request clock is pinned to t.
func ContextAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

// SessionContext builds a context carrying the usual session values for
// service-level tests that skip the HTTP middleware chain.
func SessionContext(ctx context.Context, values ...func(context.Context) context.Context) context.Context {
	for _, apply := range values {
		ctx = apply(ctx)
	}
	return ctx
}
