package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type actorKey struct{}

// actorFromContext returns the caller's user id, or empty string.
func actorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}

// Identity reads the caller's user id from X-User-ID. Authentication happens
// upstream; this service only records who acted. A malformed id is rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, "X-User-ID must be a UUID", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
