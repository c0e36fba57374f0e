package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// allowedOrigin reports whether origin is in the allowed list (case-insensitive).
func allowedOrigin(origin string, allowed []string) bool {
	origin = strings.ToLower(strings.TrimSpace(origin))
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if strings.TrimSpace(strings.ToLower(a)) == origin {
			return true
		}
	}
	return false
}

// CORS answers preflight with 200 and echoes allowed origins. server-auth is
// allowed so tenant systems can call from a browser console.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return allowedOrigin(origin, allowedOrigins)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", ServerAuthHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
