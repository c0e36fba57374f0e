package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the number of writes allowed per window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// WriteRateLimit counts requests per client IP in a fixed Redis window and
// rejects with 429 above RateLimitMaxRequests. Fails open when Redis is down.
func WriteRateLimit(client redis.UniversalClient, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r)

			count, err := client.Incr(ctx, key).Result()
			if err == nil && count == 1 {
				// first request opens the window
				err = client.Expire(ctx, key, RateLimitWindow).Err()
			}
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if count > RateLimitMaxRequests {
				w.Header().Set("Retry-After", strconv.Itoa(int(RateLimitWindow.Seconds())))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}
