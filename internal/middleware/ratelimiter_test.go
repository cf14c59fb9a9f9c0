package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("requests within the burst pass through", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Limit(1), 2)
		handler := RateLimitMiddleware(limiter)(okHandler)

		for i := 0; i < 2; i++ {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users/login", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("request %d: got status %d, want %d", i, rr.Code, http.StatusOK)
			}
		}
	})

	t.Run("requests beyond the burst get a 429", func(t *testing.T) {
		// A zero-rate limiter with burst 1 admits exactly one request.
		limiter := rate.NewLimiter(rate.Limit(0), 1)
		handler := RateLimitMiddleware(limiter)(okHandler)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users/login", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("first request: got status %d, want %d", rr.Code, http.StatusOK)
		}

		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users/login", nil))
		if rr.Code != http.StatusTooManyRequests {
			t.Fatalf("second request: got status %d, want %d", rr.Code, http.StatusTooManyRequests)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if !strings.Contains(rr.Body.String(), "Too many requests") {
			t.Errorf("unexpected body: %s", rr.Body.String())
		}
	})
}
