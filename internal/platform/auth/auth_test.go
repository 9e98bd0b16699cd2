package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var secret = []byte("test-secret")

func request(t *testing.T, token string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	err := Middleware(secret)(func(c echo.Context) error { return nil })(c)
	return c, err
}

func TestMiddlewareValidToken(t *testing.T) {
	token, err := Sign(secret, "u-1", "Ana", []string{RoleLabTech}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c, err := request(t, token)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if UserID(c) != "u-1" {
		t.Errorf("UserID = %q", UserID(c))
	}
	if got := Roles(c); len(got) != 1 || got[0] != RoleLabTech {
		t.Errorf("Roles = %v", got)
	}
}

func TestMiddlewareMissingToken(t *testing.T) {
	_, err := request(t, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	token, err := Sign(secret, "u-1", "", []string{RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := request(t, token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestMiddlewareWrongSecret(t *testing.T) {
	token, err := Sign([]byte("other"), "u-1", "", nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := request(t, token); err == nil {
		t.Fatal("token signed with wrong secret accepted")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(rolesKey, []string{RoleDoctor})
	if err := RequireRole(RoleDoctor, RoleAdmin)(handler)(c); err != nil {
		t.Fatalf("doctor rejected: %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(rolesKey, []string{RoleDoctor})
	err := RequireRole(RoleAdmin)(handler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestDevMiddlewareGrantsAllRoles(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := DevMiddleware()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatal(err)
	}
	if len(Roles(c)) != 3 {
		t.Errorf("Roles = %v", Roles(c))
	}
}
