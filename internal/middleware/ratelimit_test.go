package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/craftlink/appointments/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	return srv, redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

// drive sends one GET through the limiter and returns the response code.
func drive(t *testing.T, mw echo.MiddlewareFunc) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/craftsmen", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("limiter returned error: %v", err)
	}
	return rec.Code
}

func TestRateLimitSubSecondWindow(t *testing.T) {
	srv, rdb := newTestRedis(t)
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true,
		Limit:   3,
		Window:  500 * time.Millisecond,
		Prefix:  "rl",
	}, rdb)

	// A bucket boundary may fall between requests, so the assertion is
	// that enough requests eventually hit the limit, not the exact count.
	var limited bool
	for i := 0; i < 8; i++ {
		if code := drive(t, mw); code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("limit 3 never produced a 429 across 8 requests")
	}
	for _, key := range srv.Keys() {
		if srv.TTL(key) <= 0 {
			t.Fatalf("counter key %q has no expiry", key)
		}
	}
}

func TestRateLimitHeadersAndRetryAfter(t *testing.T) {
	_, rdb := newTestRedis(t)
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true,
		Limit:   1,
		Window:  time.Minute,
		Prefix:  "rl",
	}, rdb)

	e := echo.New()
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/v1/craftsmen", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		if err := h(c); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if rec.Code != want {
			t.Fatalf("request %d: got %d, want %d", i, rec.Code, want)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "1" {
			t.Fatalf("request %d: missing X-RateLimit-Limit", i)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Fatal("429 response lacks Retry-After")
		}
	}
}

func TestRateLimitCounterExpires(t *testing.T) {
	srv, rdb := newTestRedis(t)
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true,
		Limit:   1,
		Window:  time.Second,
		Prefix:  "rl",
	}, rdb)

	if code := drive(t, mw); code != http.StatusOK {
		t.Fatalf("first request: got %d", code)
	}
	if code := drive(t, mw); code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", code)
	}

	// Once the window passes the counter must be gone; a key that
	// survives its window throttles the client permanently.
	srv.FastForward(2 * time.Second)
	if n := len(srv.Keys()); n != 0 {
		t.Fatalf("%d counter keys survived their window", n)
	}
	if code := drive(t, mw); code != http.StatusOK {
		t.Fatalf("request after window: got %d, want 200", code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	mw := RateLimit(config.RateLimitConfig{
		Enabled: true,
		Limit:   1,
		Window:  500 * time.Millisecond,
		Prefix:  "rl",
	}, rdb)

	for i := 0; i < 3; i++ {
		if code := drive(t, mw); code != http.StatusOK {
			t.Fatalf("unreachable redis must fail open, got %d", code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	mw := RateLimit(config.RateLimitConfig{Enabled: false}, nil)
	for i := 0; i < 5; i++ {
		if code := drive(t, mw); code != http.StatusOK {
			t.Fatalf("disabled limiter must pass everything, got %d", code)
		}
	}
}
