package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func invoke(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, mw(handler)(c)
}

func TestRequestIDGenerated(t *testing.T) {
	c, err := invoke(t, RequestID(), func(c echo.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("request_id not set")
	}
	if got := c.Response().Header().Get(RequestIDHeader); got != rid {
		t.Errorf("response header = %q, want %q", got, rid)
	}
}

func TestRequestIDPreservesInbound(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequestID()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatal(err)
	}
	if rid, _ := c.Get("request_id").(string); rid != "abc-123" {
		t.Errorf("request_id = %q, want abc-123", rid)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	_, err := invoke(t, Recovery(zerolog.Nop()), func(c echo.Context) error {
		panic("boom")
	})
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", he.Code)
	}
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if err := mw(handler)(c); err != nil {
			t.Fatalf("request %d unexpectedly limited: %v", i, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(handler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if c.Response().Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}
