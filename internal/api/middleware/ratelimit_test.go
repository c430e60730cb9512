package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filmlab/photofx/internal/core/domain"
)

func TestUserLimiters_BurstThenRefill(t *testing.T) {
	l := newUserLimiters(RateLimitConfig{RPS: 1, Burst: 2})
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	if !l.allow("u1") || !l.allow("u1") {
		t.Fatalf("burst of 2 must be allowed")
	}
	if l.allow("u1") {
		t.Fatalf("third request within the same instant must be throttled")
	}
	if !l.allow("u2") {
		t.Fatalf("buckets must be per user")
	}

	now = now.Add(time.Second)
	if !l.allow("u1") {
		t.Fatalf("bucket must refill after one second")
	}
}

func TestUserLimiters_EvictsIdle(t *testing.T) {
	l := newUserLimiters(RateLimitConfig{RPS: 1, Burst: 1})
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.allow("idle")
	now = now.Add(2 * limiterIdleTTL)
	l.allow("active")

	if _, ok := l.limiters["idle"]; ok {
		t.Fatalf("idle limiter must be evicted")
	}
	if _, ok := l.limiters["active"]; !ok {
		t.Fatalf("active limiter must be kept")
	}
}

func TestUserLimiters_ZeroRPSDisablesLimit(t *testing.T) {
	l := newUserLimiters(RateLimitConfig{})
	for i := 0; i < 50; i++ {
		if !l.allow("u1") {
			t.Fatalf("request %d throttled with limiting disabled", i)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 1})
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	call := func(userID string) error {
		req := httptest.NewRequest(http.MethodPost, "/api/images/process", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(userIDKey, userID)
		return mw(next)(c)
	}

	if err := call("u1"); err != nil {
		t.Fatalf("first call must pass, got %v", err)
	}
	if err := call("u1"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := call("u2"); err != nil {
		t.Fatalf("other user must not be throttled, got %v", err)
	}
}
