package auth

import "slices"

// Context is the authenticated caller handed to a protected operation.
// It is a value with no exported fields; accessors return copies so an
// operation cannot widen or alter what the token granted.
type Context struct {
	subject     string
	issuer      string
	permissions []string
	extra       map[string]any
}

func (c Context) Subject() string { return c.subject }
func (c Context) Issuer() string  { return c.issuer }

// Permissions returns a copy of the granted scopes.
func (c Context) Permissions() []string { return slices.Clone(c.permissions) }

// Has reports exact-string membership of p.
func (c Context) Has(p string) bool { return slices.Contains(c.permissions, p) }

// Claim returns a non-registered claim from the token payload.
func (c Context) Claim(name string) (any, bool) {
	v, ok := c.extra[name]
	return v, ok
}

// Authorize grants access when required is one of the token's permissions.
// Matching is exact; there are no wildcards or hierarchies. An absent
// permission set is denied even though ValidateClaims rejects it first.
func Authorize(c Claims, required string) (Context, error) {
	if c.Permissions == nil {
		return Context{}, newError(KindUnauthorized, "permissions not included in token", nil)
	}
	if !slices.Contains(c.Permissions, required) {
		return Context{}, newError(KindUnauthorized, "permission not found", nil)
	}
	extra := make(map[string]any, len(c.Extra))
	for k, v := range c.Extra {
		extra[k] = v
	}
	return Context{
		subject:     c.Subject,
		issuer:      c.Issuer,
		permissions: slices.Clone(c.Permissions),
		extra:       extra,
	}, nil
}
