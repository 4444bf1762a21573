package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/termhub/termhub/internal/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated actor stored by BearerAuth.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}

// WithActor stores an actor on the context. Exposed for handler tests.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// BearerAuth returns middleware that resolves an Authorization bearer token
// into an actor via the given token -> user id table. Requests without a
// valid token are rejected before reaching any handler.
func BearerAuth(tokens map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				slog.Warn("auth: missing bearer token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "missing bearer token", "AUTH_MISSING_TOKEN")
				return
			}

			userID, ok := resolveToken(token, tokens)
			if !ok {
				slog.Warn("auth: invalid bearer token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "invalid bearer token", "AUTH_INVALID_TOKEN")
				return
			}

			actor := auth.Actor{ID: userID, Kind: auth.ActorUser}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// unauthorized writes the JSON error envelope the handlers use, so auth
// failures are typed like every other error response.
func unauthorized(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q,"code":%q}`, message, code)
}

// resolveToken matches the presented token against every configured token in
// constant time, so the comparison cost does not reveal which token (if any)
// matched.
func resolveToken(token string, tokens map[string]string) (string, bool) {
	var userID string
	matched := 0
	for candidate, user := range tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1 {
			userID = user
			matched = 1
		}
	}
	return userID, matched == 1
}
