package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("exam %d: %w", 7, ErrNotFound), http.StatusNotFound},
		{ErrConflictDuplicate, http.StatusConflict},
		{ErrFieldInUse, http.StatusConflict},
		{ErrCycle, http.StatusConflict},
		{ErrFieldMismatch, http.StatusUnprocessableEntity},
		{ErrValidation, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestNotFoundfWraps(t *testing.T) {
	err := NotFoundf("field %s", "abc")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestDuplicatefNamesField(t *testing.T) {
	err := Duplicatef("codigo")
	if !errors.Is(err, ErrConflictDuplicate) {
		t.Fatalf("expected wrapped ErrConflictDuplicate, got %v", err)
	}
}

func TestToHTTPHidesInternals(t *testing.T) {
	he, ok := ToHTTP(errors.New("pq: connection refused")).(*echo.HTTPError)
	if !ok {
		t.Fatal("expected *echo.HTTPError")
	}
	resp, ok := he.Message.(Response)
	if !ok {
		t.Fatalf("expected Response body, got %T", he.Message)
	}
	if resp.Message != "internal server error" {
		t.Errorf("internal error leaked: %q", resp.Message)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.Status)
	}
}

func TestToHTTPDomainError(t *testing.T) {
	he, ok := ToHTTP(NotFoundf("detail %s", "x")).(*echo.HTTPError)
	if !ok {
		t.Fatal("expected *echo.HTTPError")
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("code = %d", he.Code)
	}
}
