package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an authorization failure.
type Kind string

const (
	KindInvalidHeader Kind = "invalid_header"
	KindInvalidToken  Kind = "invalid_token"
	KindTokenExpired  Kind = "token_expired"
	KindInvalidClaims Kind = "invalid_claims"
	KindUnauthorized  Kind = "unauthorized"
	KindInternal      Kind = "internal"
)

// Error is returned by every stage of the authorization chain.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindTokenExpired}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// HTTPStatus maps k to the response status. Authentication failures are
// 401, a missing permission is 403 and anything else is a server fault.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidHeader, KindInvalidToken, KindTokenExpired, KindInvalidClaims:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the client-facing text for err: the Error's message,
// or the kind itself when there is none.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return string(KindOf(err))
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for anything
// that did not come out of this package.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

var (
	// ErrKeyNotFound reports a kid absent from the key set even after a refresh.
	ErrKeyNotFound = errors.New("signing key not found")
	// ErrKeySetUnavailable reports a failed JWKS fetch.
	ErrKeySetUnavailable = errors.New("key set unavailable")
)
