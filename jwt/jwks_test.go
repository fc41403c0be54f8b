package jwtkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

func TestKeySetFor_ParsesAsJWKS(t *testing.T) {
	s, err := NewRSASigner(2048, "k1")
	if err != nil {
		t.Fatalf("NewRSASigner: %v", err)
	}
	b, err := json.Marshal(KeySetFor(s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	set, err := jwk.Parse(b)
	if err != nil {
		t.Fatalf("jwk.Parse: %v", err)
	}
	key, ok := set.LookupKeyID("k1")
	if !ok {
		t.Fatalf("expected kid k1 in set")
	}
	if key.Algorithm().String() != "RS256" {
		t.Fatalf("expected RS256, got %s", key.Algorithm())
	}
}

func TestServeJWKS_ETag(t *testing.T) {
	s, err := NewRSASigner(2048, "k1")
	if err != nil {
		t.Fatalf("NewRSASigner: %v", err)
	}
	ks := KeySetFor(s)

	w := httptest.NewRecorder()
	ServeJWKS(w, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil), ks)
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with etag, got %d %q", w.Code, etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	ServeJWKS(w, req, ks)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestSigner_SignWithHeader(t *testing.T) {
	s, err := NewRSASigner(2048, "k1")
	if err != nil {
		t.Fatalf("NewRSASigner: %v", err)
	}
	claims := AccessClaims("https://issuer/", "u1", []string{"drinks"}, []string{"post:drinks"}, time.Minute)
	keyFn := func(tok *jwt.Token) (any, error) { return s.PublicKey(), nil }

	raw, err := s.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tok, err := jwt.Parse(raw, keyFn, jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience("drinks"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tok.Header["kid"] != "k1" {
		t.Fatalf("expected kid k1, got %v", tok.Header["kid"])
	}

	raw, err = s.SignWithHeader(claims, map[string]any{"kid": "other"})
	if err != nil {
		t.Fatalf("SignWithHeader: %v", err)
	}
	tok, err = jwt.Parse(raw, keyFn, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tok.Header["kid"] != "other" {
		t.Fatalf("expected overlaid kid, got %v", tok.Header["kid"])
	}
}
