package auth

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// ExtractBearer returns the raw token from the request's Authorization header.
// Exactly one header of the form "Bearer <token>" is accepted; the scheme is
// case-sensitive and the token must look like a compact JWS.
func ExtractBearer(h http.Header) (string, error) {
	values := h.Values("Authorization")
	switch len(values) {
	case 0:
		return "", newError(KindInvalidHeader, "authorization header is expected", nil)
	case 1:
	default:
		return "", newError(KindInvalidHeader, "multiple authorization headers", nil)
	}
	v := values[0]
	if !strings.HasPrefix(v, bearerPrefix) {
		return "", newError(KindInvalidHeader, `authorization header must start with "Bearer "`, nil)
	}
	token := v[len(bearerPrefix):]
	if token == "" {
		return "", newError(KindInvalidHeader, "token not found", nil)
	}
	if strings.ContainsAny(token, " \t") {
		return "", newError(KindInvalidHeader, "authorization header must be bearer token", nil)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", newError(KindInvalidHeader, "token is not a compact JWS", nil)
	}
	return token, nil
}
