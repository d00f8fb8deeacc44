package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// OwnerContextKey is the context key for the calling owner.
	OwnerContextKey ContextKey = "owner"

	// OwnerHeader carries the caller identity asserted by the upstream gateway.
	OwnerHeader = "X-Owner-ID"
)

// Owner copies the caller identity from OwnerHeader into the request context.
// Requests without it pass through; handlers that need an owner reject them.
func Owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner != "" {
			r = r.WithContext(WithOwner(r.Context(), owner))
		}

		next.ServeHTTP(w, r)
	})
}

// WithOwner returns a context carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerContextKey, ownerID)
}

// OwnerFromContext extracts the caller identity from context.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerContextKey).(string)
	return owner, ok && owner != ""
}
