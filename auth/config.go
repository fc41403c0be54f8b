package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single JWKS fetch.
const DefaultFetchTimeout = 5 * time.Second

// Config describes the identity provider this service accepts tokens from.
// It is built once at startup and shared read-only.
type Config struct {
	// Domain is the identity provider host (e.g. "tenant.us.auth0.com").
	// Issuer and JWKSURL are derived from it when left empty.
	Domain   string
	Issuer   string
	JWKSURL  string
	Audience string
	// Algorithms is the allow-list of JWS algorithms. Defaults to RS256.
	Algorithms   []string
	FetchTimeout time.Duration
}

// WithDefaults fills derived fields.
func (c Config) WithDefaults() Config {
	out := c
	domain := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(out.Domain), "https://"), "/")
	if out.Issuer == "" && domain != "" {
		out.Issuer = "https://" + domain + "/"
	}
	if out.JWKSURL == "" && domain != "" {
		out.JWKSURL = "https://" + domain + "/.well-known/jwks.json"
	}
	if len(out.Algorithms) == 0 {
		out.Algorithms = []string{"RS256"}
	}
	if out.FetchTimeout <= 0 {
		out.FetchTimeout = DefaultFetchTimeout
	}
	return out
}

// Validate rejects configurations that cannot verify tokens safely.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return errors.New("auth: issuer is empty (set Domain or Issuer)")
	}
	if c.JWKSURL == "" {
		return errors.New("auth: jwks url is empty (set Domain or JWKSURL)")
	}
	if c.Audience == "" {
		return errors.New("auth: audience is empty")
	}
	if len(c.Algorithms) == 0 {
		return errors.New("auth: no signing algorithms allowed")
	}
	for _, alg := range c.Algorithms {
		if !asymmetric(alg) {
			return fmt.Errorf("auth: algorithm %q is not allowed", alg)
		}
	}
	return nil
}

// asymmetric reports whether alg is a public-key JWS algorithm.
// "none" and the HMAC family never qualify.
func asymmetric(alg string) bool {
	switch alg {
	case "RS256", "RS384", "RS512",
		"PS256", "PS384", "PS512",
		"ES256", "ES384", "ES512",
		"EdDSA":
		return true
	}
	return false
}
