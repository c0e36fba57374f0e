package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/AnshRaj112/watchfeed-backend/internal/services"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyWatcher(_ context.Context, token string) (string, error) {
	if token == "store-down" {
		return "", errors.New("connection refused")
	}
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.Wrap(services.ErrForbidden, "token is not valid")
}

func echoContext(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(Tenant(r.Context()) + "|" + WatcherID(r.Context())))
}

func TestServerAuth(t *testing.T) {
	h := ServerAuth(map[string]string{"k1": "crm"}, zerolog.Nop())(http.HandlerFunc(echoContext))

	for _, tc := range []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"known key", "k1", http.StatusOK, "crm|"},
		{"padded key", "  k1 ", http.StatusOK, "crm|"},
		{"unknown key", "k2", http.StatusForbidden, ""},
		{"missing", "", http.StatusForbidden, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
			if tc.header != "" {
				req.Header.Set(ServerAuthHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, rec.Body.String())
			} else {
				assert.JSONEq(t, `{"success":false,"error_code":"forbidden","message":"server-auth is not valid"}`, rec.Body.String())
			}
		})
	}
}

func TestWatcherAuth(t *testing.T) {
	h := WatcherAuth(stubVerifier{"good": "w1"}, zerolog.Nop())(http.HandlerFunc(echoContext))

	for _, tc := range []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"invalid", "Bearer nope", http.StatusForbidden},
		{"lookup failure", "Bearer store-down", http.StatusInternalServerError},
		{"empty bearer", "Bearer  ", http.StatusForbidden},
		{"wrong scheme", "Basic good", http.StatusForbidden},
		{"missing", "", http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "|w1", rec.Body.String())
			}
		})
	}
}
