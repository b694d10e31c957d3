package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestID_Generated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	h := RequestID()(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rid := rec.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Fatal("expected generated request ID in response header")
	}
	if got, _ := c.Get("request_id").(string); got != rid {
		t.Errorf("context request_id %q does not match header %q", got, rid)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, "client-supplied-id")

	h := RequestID()(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("expected client-supplied ID to be echoed, got %q", got)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})

	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", he.Code)
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	h := Recovery(zerolog.Nop())(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/bookings")
	c.Set("request_id", "rid-1")

	h := Logger(zerolog.Nop())(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	h := mw(okHandler)

	for i := 0; i < 3; i++ {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Request().Header.Set("X-Real-IP", "10.0.0.1")
		if err := h(c); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := mw(okHandler)

	c, _ := newTestContext(http.MethodGet, "/")
	c.Request().Header.Set("X-Real-IP", "10.0.0.2")
	if err := h(c); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	c2, rec2 := newTestContext(http.MethodGet, "/")
	c2.Request().Header.Set("X-Real-IP", "10.0.0.2")
	err := h(c2)
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimit_SeparateKeysPerIP(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := mw(okHandler)

	c1, _ := newTestContext(http.MethodGet, "/")
	c1.Request().Header.Set("X-Real-IP", "10.0.0.3")
	if err := h(c1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c2, _ := newTestContext(http.MethodGet, "/")
	c2.Request().Header.Set("X-Real-IP", "10.0.0.4")
	if err := h(c2); err != nil {
		t.Errorf("different IP should have its own bucket: %v", err)
	}
}

func TestRequestTimeout_CompletesInTime(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	h := RequestTimeout(time.Second)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_Expires(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/")

	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		case <-time.After(time.Second):
			return c.String(http.StatusOK, "too late")
		}
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}
