// Package authtest runs an in-process identity provider for tests. It serves
// a JWKS document and signs RS256 access tokens that verify against it.
//
// Example usage:
//
//	iss := authtest.NewIssuer("drinks-api")
//	defer iss.Close()
//
//	authz, _ := auth.NewAuthorizer(iss.Config(), auth.NewKeySet(iss.Config()))
//	token := iss.Token("user-123", "post:drinks")
package authtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/open-rails/coffeeshop/auth"
	jwtkit "github.com/open-rails/coffeeshop/jwt"
)

// JWKSPath is where the issuer publishes its keys.
const JWKSPath = "/.well-known/jwks.json"

// Issuer signs tokens and serves the public keys at JWKSPath.
type Issuer struct {
	server   *httptest.Server
	audience string

	mu        sync.Mutex
	active    *jwtkit.RSASigner
	published []*jwtkit.RSASigner
	failing   bool
	delay     time.Duration
	hits      atomic.Int64
	nextKID   int
}

// NewIssuer starts an issuer whose tokens carry audience.
func NewIssuer(audience string) *Issuer {
	iss := &Issuer{audience: audience}
	iss.active = iss.newSigner()
	iss.published = []*jwtkit.RSASigner{iss.active}

	mux := http.NewServeMux()
	mux.HandleFunc(JWKSPath, iss.handleJWKS)
	iss.server = httptest.NewServer(mux)
	return iss
}

func (iss *Issuer) newSigner() *jwtkit.RSASigner {
	iss.nextKID++
	s, err := jwtkit.NewRSASigner(2048, fmt.Sprintf("test-key-%d", iss.nextKID))
	if err != nil {
		panic("failed to create RSA signer: " + err.Error())
	}
	return s
}

// IssuerID returns the value placed in the iss claim.
func (iss *Issuer) IssuerID() string { return iss.server.URL + "/" }

// Config returns an auth.Config that trusts this issuer.
func (iss *Issuer) Config() auth.Config {
	return auth.Config{
		Issuer:       iss.IssuerID(),
		JWKSURL:      iss.server.URL + JWKSPath,
		Audience:     iss.audience,
		Algorithms:   []string{"RS256"},
		FetchTimeout: 2 * time.Second,
	}
}

// JWKSHits reports how many times the JWKS document has been requested.
func (iss *Issuer) JWKSHits() int64 { return iss.hits.Load() }

// SetFailing makes the JWKS endpoint answer 503.
func (iss *Issuer) SetFailing(failing bool) {
	iss.mu.Lock()
	iss.failing = failing
	iss.mu.Unlock()
}

// SetDelay makes the JWKS endpoint wait d before answering.
func (iss *Issuer) SetDelay(d time.Duration) {
	iss.mu.Lock()
	iss.delay = d
	iss.mu.Unlock()
}

// Rotate publishes a new active key and retires the previous one.
func (iss *Issuer) Rotate() {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.active = iss.newSigner()
	iss.published = []*jwtkit.RSASigner{iss.active}
}

// Close shuts down the server.
func (iss *Issuer) Close() {
	if iss.server != nil {
		iss.server.Close()
	}
}

func (iss *Issuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	iss.hits.Add(1)
	iss.mu.Lock()
	failing, delay := iss.failing, iss.delay
	ks := jwtkit.KeySetFor(iss.published...)
	iss.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	jwtkit.ServeJWKS(w, r, ks)
}

// Claims returns a valid payload for subject granting permissions.
func (iss *Issuer) Claims(subject string, permissions ...string) jwt.MapClaims {
	return jwtkit.AccessClaims(iss.IssuerID(), subject, []string{iss.audience}, permissions, time.Hour)
}

// Token signs a valid access token for subject granting permissions.
func (iss *Issuer) Token(subject string, permissions ...string) string {
	return iss.Sign(iss.Claims(subject, permissions...))
}

// Sign signs arbitrary claims with the active key.
func (iss *Issuer) Sign(claims jwt.MapClaims) string {
	return iss.SignWithHeader(claims, nil)
}

// SignWithHeader signs claims with the active key and overlays header
// fields, such as a kid naming a different key.
func (iss *Issuer) SignWithHeader(claims jwt.MapClaims, header map[string]any) string {
	iss.mu.Lock()
	s := iss.active
	iss.mu.Unlock()
	token, err := s.SignWithHeader(claims, header)
	if err != nil {
		panic("failed to sign token: " + err.Error())
	}
	return token
}

// SignUnpublished signs claims with a fresh key that never appears in the JWKS.
func (iss *Issuer) SignUnpublished(claims jwt.MapClaims) string {
	iss.mu.Lock()
	s := iss.newSigner()
	iss.mu.Unlock()
	token, err := s.Sign(claims)
	if err != nil {
		panic("failed to sign token: " + err.Error())
	}
	return token
}

// ExpiredToken signs a token whose exp is an hour in the past.
func (iss *Issuer) ExpiredToken(subject string, permissions ...string) string {
	c := iss.Claims(subject, permissions...)
	c["exp"] = time.Now().Add(-time.Hour).Unix()
	return iss.Sign(c)
}
