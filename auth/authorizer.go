// Package auth verifies bearer tokens issued by an external identity provider
// and enforces per-operation permission scopes.
//
// A request passes through four stages in a fixed order: ExtractBearer,
// Verifier.Verify, ValidateClaims and Authorize. Authorizer composes them.
// Every stage returns *Error so callers branch on Kind.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Authorizer runs the full chain for one protected operation call.
type Authorizer struct {
	verifier *Verifier
	policy   ClaimsPolicy
	now      func() time.Time
	log      logrus.FieldLogger
}

// AuthorizerOpt configures an Authorizer.
type AuthorizerOpt func(*Authorizer)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) AuthorizerOpt {
	return func(a *Authorizer) { a.now = now }
}

// WithAuthorizerLogger sets the logger for rejected requests.
func WithAuthorizerLogger(l logrus.FieldLogger) AuthorizerOpt {
	return func(a *Authorizer) { a.log = l }
}

// NewAuthorizer validates cfg and wires a verifier over keys.
func NewAuthorizer(cfg Config, keys KeyFinder, opts ...AuthorizerOpt) (*Authorizer, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Authorizer{
		verifier: NewVerifier(cfg, keys),
		policy:   ClaimsPolicy{Issuer: cfg.Issuer, Audience: cfg.Audience},
		now:      time.Now,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Check authenticates the request headers and requires permission.
// Expiry is evaluated against the clock on every call.
func (a *Authorizer) Check(ctx context.Context, h http.Header, permission string) (Context, error) {
	raw, err := ExtractBearer(h)
	if err != nil {
		return Context{}, err
	}
	tok, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		a.reject(err, permission)
		return Context{}, err
	}
	claims, err := ValidateClaims(tok, a.policy, a.now())
	if err != nil {
		a.reject(err, permission)
		return Context{}, err
	}
	ac, err := Authorize(claims, permission)
	if err != nil {
		a.log.WithFields(logrus.Fields{"sub": claims.Subject, "permission": permission}).Info("permission denied")
		return Context{}, err
	}
	return ac, nil
}

func (a *Authorizer) reject(err error, permission string) {
	entry := a.log.WithFields(logrus.Fields{"kind": KindOf(err), "permission": permission})
	if KindOf(err) == KindInternal {
		entry.WithError(err).Error("authorization failed")
		return
	}
	entry.WithError(err).Debug("token rejected")
}
