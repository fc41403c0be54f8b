package authgin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/auth"
	"github.com/open-rails/coffeeshop/ratelimit"
)

const authContextKey = "auth.context"

// Checker runs the authorization chain. *auth.Authorizer implements it.
type Checker interface {
	Check(ctx context.Context, h http.Header, permission string) (auth.Context, error)
}

// RequirePermission guards the next handlers with permission. On failure the
// request is aborted and nothing downstream runs.
func RequirePermission(chk Checker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, err := chk.Check(c.Request.Context(), c.Request.Header, permission)
		if err != nil {
			ginutil.AuthFailed(c, err)
			return
		}
		c.Set(authContextKey, ac)
		c.Request = c.Request.WithContext(auth.WithContext(c.Request.Context(), ac))
		c.Next()
	}
}

// AuthFromGin returns the caller set by RequirePermission.
func AuthFromGin(c *gin.Context) (auth.Context, bool) {
	if v, ok := c.Get(authContextKey); ok {
		if ac, ok := v.(auth.Context); ok {
			return ac, true
		}
	}
	return auth.FromContext(c.Request.Context())
}

// RateLimit applies bucket per token subject, falling back to the client IP.
// A limiter error lets the request through and is logged.
func RateLimit(l ratelimit.Limiter, bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		key := c.ClientIP()
		if ac, ok := AuthFromGin(c); ok && ac.Subject() != "" {
			key = "sub:" + ac.Subject()
		}
		ok, err := l.Allow(c.Request.Context(), bucket, key)
		if err != nil {
			ginutil.Logger(c).WithError(err).WithField("bucket", bucket).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			ginutil.TooMany(c)
			return
		}
		c.Next()
	}
}
