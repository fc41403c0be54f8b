package auth

import (
	"slices"
	"time"
)

// PermissionsClaim is the payload field carrying granted scopes.
const PermissionsClaim = "permissions"

// ClaimsPolicy is the static expectation a token must meet.
type ClaimsPolicy struct {
	Issuer   string
	Audience string
}

// Claims are the validated contents of a token.
type Claims struct {
	Issuer    string
	Audience  []string
	Subject   string
	ExpiresAt time.Time
	// Permissions is nil when the claim was absent; an empty, non-nil slice
	// means the claim was present and grants nothing.
	Permissions []string
	Extra       map[string]any
}

var registered = []string{"iss", "aud", "sub", "exp", "iat", "nbf", "jti", PermissionsClaim}

// ValidateClaims checks expiry, issuer, audience and permission shape in that
// order and reports the first failure. A token expiring exactly at now is expired.
func ValidateClaims(tok *VerifiedToken, policy ClaimsPolicy, now time.Time) (Claims, error) {
	if tok == nil || tok.Claims == nil {
		return Claims{}, newError(KindInvalidClaims, "no claims", nil)
	}
	mc := tok.Claims

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, newError(KindInvalidClaims, "malformed exp claim", err)
	}
	if exp == nil {
		return Claims{}, newError(KindInvalidClaims, "missing exp claim", nil)
	}
	if !now.Before(exp.Time) {
		return Claims{}, newError(KindTokenExpired, "token expired", nil)
	}

	iss, err := mc.GetIssuer()
	if err != nil || iss != policy.Issuer {
		return Claims{}, newError(KindInvalidClaims, "incorrect issuer", err)
	}

	aud, err := mc.GetAudience()
	if err != nil || !slices.Contains([]string(aud), policy.Audience) {
		return Claims{}, newError(KindInvalidClaims, "incorrect audience", err)
	}

	perms, ok := permissionSet(mc[PermissionsClaim])
	if !ok {
		return Claims{}, newError(KindInvalidClaims, "permissions not included in token", nil)
	}

	sub, _ := mc.GetSubject()
	extra := make(map[string]any)
	for k, v := range mc {
		if !slices.Contains(registered, k) {
			extra[k] = v
		}
	}
	return Claims{
		Issuer:      iss,
		Audience:    slices.Clone([]string(aud)),
		Subject:     sub,
		ExpiresAt:   exp.Time,
		Permissions: perms,
		Extra:       extra,
	}, nil
}

// permissionSet accepts a JSON array of strings. Anything else, including an
// absent claim, is rejected.
func permissionSet(v any) ([]string, bool) {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, p := range t {
			s, ok := p.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return append(make([]string, 0, len(t)), t...), true
	default:
		return nil, false
	}
}
