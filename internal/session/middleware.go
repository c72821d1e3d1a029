// Package session provides HTTP middleware for session management.
package session

import (
	"context"
	"net/http"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// ctxKey is the key used to store session data in context
	ctxKey contextKey = "session"
)

// Middleware adds session data to the request context when a valid
// bearer token is present; requests without one pass through untouched.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.GetSession(r.Context(), r)
		if err == nil {
			ctx := context.WithValue(r.Context(), ctxKey, session)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid session.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.GetSession(r.Context(), r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey, session)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext retrieves session data from the request context.
func GetSessionFromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return session
}
