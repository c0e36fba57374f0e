package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/watchfeed-backend/internal/services"
)

// ServerAuthHeader carries the tenant system key.
const ServerAuthHeader = "server-auth"

type ctxKey int

const (
	tenantKey ctxKey = iota
	watcherKey
	requestIDKey
)

// WatcherVerifier resolves a bearer token to a registered watcher_id. Errors
// wrapping services.ErrForbidden reject the request; others are internal.
type WatcherVerifier interface {
	VerifyWatcher(ctx context.Context, token string) (string, error)
}

// ServerAuth resolves the server-auth header to a tenant system name. keys
// maps header value to system name.
func ServerAuth(keys map[string]string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(ServerAuthHeader))
			system, ok := keys[key]
			if key == "" || !ok {
				log.Warn().Str("path", r.URL.Path).Str("request_id", RequestID(r.Context())).Msg("server-auth rejected")
				writeError(w, http.StatusForbidden, "forbidden", "server-auth is not valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey, system)))
		})
	}
}

// WatcherAuth requires "Authorization: Bearer <token>" of a watcher that still
// exists and stores the watcher_id.
func WatcherAuth(verifier WatcherVerifier, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusForbidden, "forbidden", "Not authenticated")
				return
			}
			watcherID, err := verifier.VerifyWatcher(r.Context(), strings.TrimSpace(raw))
			if errors.Is(err, services.ErrForbidden) {
				writeError(w, http.StatusForbidden, "forbidden", "token is not valid")
				return
			}
			if err != nil {
				log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("watcher lookup failed")
				writeError(w, http.StatusInternalServerError, "internal", "Internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), watcherKey, watcherID)))
		})
	}
}

// Tenant returns the system name set by ServerAuth.
func Tenant(ctx context.Context) string {
	s, _ := ctx.Value(tenantKey).(string)
	return s
}

// WatcherID returns the watcher set by WatcherAuth.
func WatcherID(ctx context.Context) string {
	s, _ := ctx.Value(watcherKey).(string)
	return s
}
