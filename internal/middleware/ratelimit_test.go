package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func write(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activities", nil)
	req.RemoteAddr = ip + ":5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWriteRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	h := WriteRateLimit(rdb, zerolog.Nop())(http.HandlerFunc(okHandler))

	rec := write(h, "10.0.0.1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RateLimitWindow, mr.TTL(RateLimitKeyPrefix+"10.0.0.1"))
	assert.Equal(t, "59", rec.Header().Get("X-RateLimit-Remaining"))

	for i := 1; i < RateLimitMaxRequests; i++ {
		require.Equal(t, http.StatusOK, write(h, "10.0.0.1").Code, "request %d", i+1)
	}

	rec = write(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))

	// other clients keep their own window
	rec = write(h, "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "59", rec.Header().Get("X-RateLimit-Remaining"))

	// a new window starts once the key is gone
	mr.Del(RateLimitKeyPrefix + "10.0.0.1")
	assert.Equal(t, http.StatusOK, write(h, "10.0.0.1").Code)
}

func TestWriteRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	h := WriteRateLimit(rdb, zerolog.Nop())(http.HandlerFunc(okHandler))

	mr.Close()
	assert.Equal(t, http.StatusOK, write(h, "10.0.0.1").Code)
}
