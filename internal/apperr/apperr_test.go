package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("bad", "bad input"), http.StatusBadRequest},
		{Authentication("nope", "who are you"), http.StatusUnauthorized},
		{Authorization("deny", "not yours"), http.StatusForbidden},
		{NotFound("gone", "missing"), http.StatusNotFound},
		{Conflict("dup", "already there"), http.StatusConflict},
		{errors.New("db on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.status {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestErrorsIsMatchesKindAndCode(t *testing.T) {
	sentinel := Conflict("duplicate_email", "email already registered")
	wrapped := fmt.Errorf("create user: %w", sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Error("wrapped sentinel should match with errors.Is")
	}
	other := Conflict("duplicate_name", "name already registered")
	if errors.Is(other, sentinel) {
		t.Error("different codes must not match")
	}
}
