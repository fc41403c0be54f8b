package auth_test

import (
	"context"
	"strings"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/open-rails/coffeeshop/auth"
	"github.com/open-rails/coffeeshop/authtest"
)

// countingKeys records lookups so tests can assert none happened.
type countingKeys struct {
	inner auth.KeyFinder
	calls int
}

func (c *countingKeys) Get(ctx context.Context, kid string) (auth.SigningKey, error) {
	c.calls++
	return c.inner.Get(ctx, kid)
}

func newVerifier(t *testing.T, iss *authtest.Issuer) (*auth.Verifier, *countingKeys) {
	t.Helper()
	keys := &countingKeys{inner: auth.NewKeySet(iss.Config(), auth.WithLogger(quietLogger()))}
	return auth.NewVerifier(iss.Config(), keys), keys
}

func TestVerify_Valid(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, _ := newVerifier(t, iss)

	tok, err := v.Verify(context.Background(), iss.Token("u1", "post:drinks"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if tok.KeyID != "test-key-1" || tok.Algorithm != "RS256" {
		t.Fatalf("unexpected header data: %+v", tok)
	}
	if sub, _ := tok.Claims.GetSubject(); sub != "u1" {
		t.Fatalf("expected sub u1, got %q", sub)
	}
}

func TestVerify_DisallowedAlgorithmsNeverReachKeyLookup(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, keys := newVerifier(t, iss)

	claims := iss.Claims("u1", "post:drinks")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	none.Header["kid"] = "test-key-1"
	noneStr, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	hs.Header["kid"] = "test-key-1"
	hsStr, err := hs.SignedString([]byte("public-key-as-secret"))
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}

	for name, raw := range map[string]string{"none": noneStr, "HS256": hsStr} {
		_, err := v.Verify(context.Background(), raw)
		if auth.KindOf(err) != auth.KindInvalidHeader {
			t.Fatalf("%s: expected invalid_header, got %v", name, err)
		}
	}
	if keys.calls != 0 {
		t.Fatalf("expected no key lookups, got %d", keys.calls)
	}
	if iss.JWKSHits() != 0 {
		t.Fatalf("expected no JWKS fetch, got %d", iss.JWKSHits())
	}
}

func TestVerify_UnknownKeyIsInvalidHeaderAfterOneRefresh(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, _ := newVerifier(t, iss)

	if _, err := v.Verify(context.Background(), iss.Token("u1")); err != nil {
		t.Fatalf("warm-up Verify: %v", err)
	}
	before := iss.JWKSHits()

	raw := iss.SignUnpublished(iss.Claims("u1", "post:drinks"))
	_, err := v.Verify(context.Background(), raw)
	if auth.KindOf(err) != auth.KindInvalidHeader {
		t.Fatalf("expected invalid_header, got %v", err)
	}
	if got := iss.JWKSHits() - before; got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, _ := newVerifier(t, iss)

	a := strings.Split(iss.Token("u1", "get:drinks-detail"), ".")
	b := strings.Split(iss.Token("admin", "delete:drinks"), ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	if _, err := v.Verify(context.Background(), forged); auth.KindOf(err) != auth.KindInvalidToken {
		t.Fatalf("expected invalid_token, got %v", err)
	}
}

func TestVerify_MalformedHeader(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, keys := newVerifier(t, iss)

	for _, raw := range []string{"!!!.e30.sig", "e30.e30.sig", "eyJhbGciOiJSUzI1NiJ9.e30.sig"} {
		if _, err := v.Verify(context.Background(), raw); auth.KindOf(err) != auth.KindInvalidHeader {
			t.Fatalf("%q: expected invalid_header, got %v", raw, err)
		}
	}
	if keys.calls != 0 {
		t.Fatalf("expected no key lookups, got %d", keys.calls)
	}
}

func TestVerify_KeySetUnavailableIsInternal(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, _ := newVerifier(t, iss)
	iss.SetFailing(true)

	if _, err := v.Verify(context.Background(), iss.Token("u1")); auth.KindOf(err) != auth.KindInternal {
		t.Fatalf("expected internal, got %v", err)
	}
}

func TestVerify_ForgedHeaderFields(t *testing.T) {
	iss := authtest.NewIssuer("drinks")
	defer iss.Close()
	v, keys := newVerifier(t, iss)
	claims := iss.Claims("u1", "post:drinks")

	cases := []struct {
		name   string
		header map[string]any
		kind   auth.Kind
	}{
		{"empty kid", map[string]any{"kid": ""}, auth.KindInvalidHeader},
		{"alg outside allow-list", map[string]any{"alg": "RS512"}, auth.KindInvalidHeader},
		{"alg claims HS256", map[string]any{"alg": "HS256"}, auth.KindInvalidHeader},
	}
	for _, tc := range cases {
		raw := iss.SignWithHeader(claims, tc.header)
		if _, err := v.Verify(context.Background(), raw); auth.KindOf(err) != tc.kind {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.kind, err)
		}
	}
	if keys.calls != 0 {
		t.Fatalf("expected no key lookups, got %d", keys.calls)
	}

	raw := iss.SignWithHeader(claims, map[string]any{"kid": "test-key-9"})
	if _, err := v.Verify(context.Background(), raw); auth.KindOf(err) != auth.KindInvalidHeader {
		t.Fatalf("unknown kid: expected invalid_header, got %v", err)
	}
}
