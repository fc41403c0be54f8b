package auth

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// KeyFinder resolves a kid to a verification key. *KeySet implements it.
type KeyFinder interface {
	Get(ctx context.Context, kid string) (SigningKey, error)
}

// VerifiedToken is a token whose signature has been accepted.
// Its claims are authentic but not yet validated.
type VerifiedToken struct {
	KeyID     string
	Algorithm string
	Claims    jwt.MapClaims
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ,omitempty"`
}

// Verifier checks compact JWS signatures against a key set.
type Verifier struct {
	keys       KeyFinder
	algorithms []string
	parser     *jwt.Parser
}

// NewVerifier builds a verifier that accepts only the algorithms in cfg.
func NewVerifier(cfg Config, keys KeyFinder) *Verifier {
	cfg = cfg.WithDefaults()
	return &Verifier{
		keys:       keys,
		algorithms: slices.Clone(cfg.Algorithms),
		parser:     jwt.NewParser(),
	}
}

// Verify authenticates raw and returns its claims. The payload segment is not
// decoded until the signature over header and payload has been checked.
func (v *Verifier) Verify(ctx context.Context, raw string) (*VerifiedToken, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, newError(KindInvalidHeader, "token is not a compact JWS", nil)
	}

	headerBytes, err := v.parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, newError(KindInvalidHeader, "unable to decode token header", err)
	}
	var hdr tokenHeader
	if err := json.Unmarshal(headerBytes, &hdr); err != nil {
		return nil, newError(KindInvalidHeader, "unable to parse token header", err)
	}
	if !slices.Contains(v.algorithms, hdr.Alg) {
		return nil, newError(KindInvalidHeader, "signing algorithm not allowed", nil)
	}
	method := jwt.GetSigningMethod(hdr.Alg)
	if method == nil {
		return nil, newError(KindInvalidHeader, "unknown signing algorithm", nil)
	}
	if hdr.Kid == "" {
		return nil, newError(KindInvalidHeader, "token header has no kid", nil)
	}

	key, err := v.keys.Get(ctx, hdr.Kid)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return nil, newError(KindInvalidHeader, "unable to find the appropriate key", err)
	case err != nil:
		return nil, newError(KindInternal, "unable to load signing keys", err)
	}
	if key.Algorithm != "" && key.Algorithm != hdr.Alg {
		return nil, newError(KindInvalidHeader, "key does not match token algorithm", nil)
	}

	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, newError(KindInvalidToken, "unable to decode signature", err)
	}
	if err := method.Verify(parts[0]+"."+parts[1], sig, key.Key); err != nil {
		return nil, newError(KindInvalidToken, "signature verification failed", err)
	}

	payload, err := v.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, newError(KindInvalidToken, "unable to decode token payload", err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, newError(KindInvalidToken, "unable to parse token payload", err)
	}
	return &VerifiedToken{KeyID: hdr.Kid, Algorithm: hdr.Alg, Claims: claims}, nil
}
