package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	if got := StatusOf(NotFound("x", "missing")); got != http.StatusNotFound {
		t.Fatalf("not found: want=404 got=%d", got)
	}
	wrapped := fmt.Errorf("enroll: %w", BadRequest("already_enrolled", "already enrolled"))
	if got := StatusOf(wrapped); got != http.StatusBadRequest {
		t.Fatalf("wrapped: want=400 got=%d", got)
	}
	if got := StatusOf(errors.New("boom")); got != 0 {
		t.Fatalf("plain: want=0 got=%d", got)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := Forbidden("not_owner", "not your lesson").Error(); got != "not your lesson" {
		t.Fatalf("message: got=%q", got)
	}
	if got := (&Error{Code: "bare"}).Error(); got != "bare" {
		t.Fatalf("code fallback: got=%q", got)
	}
	if got := (&Error{Status: 418}).Error(); got != "api error (418)" {
		t.Fatalf("status fallback: got=%q", got)
	}
	u := Unauthorized("bad token")
	if u.Status != http.StatusUnauthorized || u.Code != "unauthorized" {
		t.Fatalf("unauthorized: got=%+v", u)
	}
}
