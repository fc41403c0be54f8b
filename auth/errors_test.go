package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidHeader: http.StatusUnauthorized,
		KindInvalidToken:  http.StatusUnauthorized,
		KindTokenExpired:  http.StatusUnauthorized,
		KindInvalidClaims: http.StatusUnauthorized,
		KindUnauthorized:  http.StatusForbidden,
		KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	wrapped := fmt.Errorf("check: %w", newError(KindTokenExpired, "token expired", nil))
	if got := PublicMessage(wrapped); got != "token expired" {
		t.Fatalf("expected the error's message, got %q", got)
	}
	if got := PublicMessage(newError(KindInvalidHeader, "", nil)); got != "invalid_header" {
		t.Fatalf("expected kind fallback, got %q", got)
	}
	if got := PublicMessage(errors.New("boom")); got != string(KindInternal) {
		t.Fatalf("expected internal for foreign errors, got %q", got)
	}
}
