// Package authhttp guards plain net/http handlers with the same
// authorization chain the gin adapter uses.
package authhttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/open-rails/coffeeshop/auth"
	"github.com/sirupsen/logrus"
)

// Checker runs the authorization chain. *auth.Authorizer implements it.
type Checker interface {
	Check(ctx context.Context, h http.Header, permission string) (auth.Context, error)
}

// Guard wraps handlers in a permission check.
type Guard struct {
	chk Checker
	log logrus.FieldLogger
}

// NewGuard returns a Guard that logs server-side failures to log.
func NewGuard(chk Checker, log logrus.FieldLogger) *Guard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Guard{chk: chk, log: log}
}

// RequirePermission wraps next so it only runs for callers holding permission.
// The auth.Context is available to next through auth.FromContext.
func (g *Guard) RequirePermission(permission string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, err := g.chk.Check(r.Context(), r.Header, permission)
		if err != nil {
			g.writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ac)))
	})
}

func (g *Guard) writeAuthError(w http.ResponseWriter, err error) {
	kind := auth.KindOf(err)
	status := kind.HTTPStatus()
	body := map[string]any{"success": false, "error": status}
	if status == http.StatusInternalServerError {
		g.log.WithError(err).Error("authorization failed")
		body["message"] = "internal server error"
	} else {
		body["code"] = kind
		body["message"] = auth.PublicMessage(err)
	}
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
