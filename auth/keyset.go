package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SigningKey is one published verification key.
type SigningKey struct {
	KeyID     string
	Algorithm string // may be empty when the JWKS entry omits "alg"
	Key       any    // *rsa.PublicKey, *ecdsa.PublicKey or ed25519.PublicKey
}

// KeySet caches the provider's JWKS keyed by kid. The map is never mutated
// after publication; a refresh builds a new map and swaps the pointer, so
// readers see either the old or the new set in full.
//
// There is no expiry timer. A lookup miss triggers one fetch, which handles
// key rotation at the cost of at most one extra fetch per rotation.
type KeySet struct {
	url     string
	client  *http.Client
	timeout time.Duration
	log     logrus.FieldLogger

	keys  atomic.Pointer[map[string]SigningKey]
	group singleflight.Group
}

// KeySetOpt configures a KeySet.
type KeySetOpt func(*KeySet)

// WithHTTPClient overrides the client used for JWKS fetches.
func WithHTTPClient(c *http.Client) KeySetOpt {
	return func(ks *KeySet) { ks.client = c }
}

// WithLogger sets the logger used for refresh events.
func WithLogger(l logrus.FieldLogger) KeySetOpt {
	return func(ks *KeySet) { ks.log = l }
}

// NewKeySet returns an empty cache for cfg.JWKSURL. Nothing is fetched until first use.
func NewKeySet(cfg Config, opts ...KeySetOpt) *KeySet {
	cfg = cfg.WithDefaults()
	ks := &KeySet{
		url:     cfg.JWKSURL,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		timeout: cfg.FetchTimeout,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(ks)
	}
	return ks
}

// Get returns the key for kid, refreshing the set once on a miss.
func (ks *KeySet) Get(ctx context.Context, kid string) (SigningKey, error) {
	if k, ok := ks.lookup(kid); ok {
		return k, nil
	}
	if err := ks.Refresh(ctx); err != nil {
		return SigningKey{}, err
	}
	if k, ok := ks.lookup(kid); ok {
		return k, nil
	}
	return SigningKey{}, ErrKeyNotFound
}

func (ks *KeySet) lookup(kid string) (SigningKey, bool) {
	m := ks.keys.Load()
	if m == nil {
		return SigningKey{}, false
	}
	k, ok := (*m)[kid]
	return k, ok
}

// Len returns the number of cached keys.
func (ks *KeySet) Len() int {
	if m := ks.keys.Load(); m != nil {
		return len(*m)
	}
	return 0
}

// Refresh fetches the JWKS and replaces the cached set. Concurrent callers
// share one in-flight fetch. The fetch ignores the cancellation of whichever
// caller started it and is bounded by the fetch timeout instead; each caller
// still stops waiting when its own ctx is done.
func (ks *KeySet) Refresh(ctx context.Context) error {
	ch := ks.group.DoChan("jwks", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ks.timeout)
		defer cancel()
		next, err := ks.fetch(fctx)
		if err != nil {
			return nil, err
		}
		ks.keys.Store(&next)
		ks.log.WithFields(logrus.Fields{"jwks_url": ks.url, "keys": len(next)}).Info("jwks refreshed")
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrKeySetUnavailable, ctx.Err())
	}
}

func (ks *KeySet) fetch(ctx context.Context) (map[string]SigningKey, error) {
	set, err := jwk.Fetch(ctx, ks.url, jwk.WithHTTPClient(ks.client))
	if err != nil {
		ks.log.WithError(err).WithField("jwks_url", ks.url).Warn("jwks fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	out := make(map[string]SigningKey, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}
		kid := key.KeyID()
		if kid == "" {
			continue
		}
		if use := key.KeyUsage(); use != "" && use != "sig" {
			continue
		}
		var raw any
		if err := key.Raw(&raw); err != nil {
			ks.log.WithError(err).WithField("kid", kid).Warn("skipping unusable jwk")
			continue
		}
		alg := ""
		if a := key.Algorithm(); a != nil {
			alg = a.String()
		}
		out[kid] = SigningKey{KeyID: kid, Algorithm: alg, Key: raw}
	}
	return out, nil
}
