package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seulahhh/Fintech-project/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	handler := httpx.RateLimitByIP(cfg)(okHandler())

	t.Run("allows up to burst then rejects", func(t *testing.T) {
		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:4567"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if i < 2 {
				require.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Equal(t, http.StatusTooManyRequests, rec.Code)
				require.NotEmpty(t, rec.Header().Get("Retry-After"))
			}
		}
	})

	t.Run("distinct ips have distinct buckets", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:4567"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.10:55123"
		require.Equal(t, "192.168.1.10", httpx.IPKeyExtractor(req))
	})

	t.Run("x-forwarded-for wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.10:55123"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 192.168.1.1")
		require.Equal(t, "203.0.113.7", httpx.IPKeyExtractor(req))
	})

	t.Run("x-real-ip fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.10:55123"
		req.Header.Set("X-Real-IP", "203.0.113.8")
		require.Equal(t, "203.0.113.8", httpx.IPKeyExtractor(req))
	})
}

func TestRateLimitByUser(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	handler := httpx.RateLimitByUser(cfg)(okHandler())

	send := func(email, ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip
		if email != "" {
			ctx := context.WithValue(req.Context(), httpx.CtxKeyEmail, email)
			req = req.WithContext(ctx)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("a@example.com", "10.1.0.1:1"))
	require.Equal(t, http.StatusTooManyRequests, send("a@example.com", "10.1.0.1:1"))
	require.Equal(t, http.StatusOK, send("b@example.com", "10.1.0.1:1"))
}
