// Package jwtkit signs access tokens and publishes the matching JWKS.
// The service itself only verifies tokens; this package backs the local
// test issuer and development tooling.
package jwtkit

import (
	"crypto/rand"
	"crypto/rsa"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// RSASigner signs RS256 tokens with an in-memory key.
type RSASigner struct {
	key *rsa.PrivateKey
	kid string
}

func NewRSASigner(bits int, kid string) (*RSASigner, error) {
	if bits == 0 {
		bits = 2048
	}
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &RSASigner{key: k, kid: kid}, nil
}

func (s *RSASigner) Algorithm() string         { return jwt.SigningMethodRS256.Alg() }
func (s *RSASigner) KID() string               { return s.kid }
func (s *RSASigner) PublicKey() *rsa.PublicKey { return &s.key.PublicKey }

func (s *RSASigner) Sign(claims jwt.MapClaims) (string, error) {
	return s.SignWithHeader(claims, nil)
}

// SignWithHeader signs claims and overlays extra header fields (e.g. a
// different kid) after the defaults are set.
func (s *RSASigner) SignWithHeader(claims jwt.MapClaims, header map[string]any) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid
	for k, v := range header {
		token.Header[k] = v
	}
	return token.SignedString(s.key)
}

// AccessClaims builds the payload of an API access token.
func AccessClaims(issuer, subject string, audience []string, permissions []string, ttl time.Duration) jwt.MapClaims {
	now := time.Now()
	perms := make([]any, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p)
	}
	var aud any = audience
	if len(audience) == 1 {
		aud = audience[0]
	}
	return jwt.MapClaims{
		"iss":         issuer,
		"sub":         subject,
		"aud":         aud,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
		"permissions": perms,
	}
}
