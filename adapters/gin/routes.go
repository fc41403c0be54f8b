// Package authgin mounts the drink catalog on a gin router and guards the
// mutating routes with bearer-token permissions.
package authgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/gin/handlers"
	"github.com/open-rails/coffeeshop/drinks"
	"github.com/open-rails/coffeeshop/ratelimit"
)

// Permission scopes required by the protected routes.
const (
	PermGetDrinksDetail = "get:drinks-detail"
	PermPostDrinks      = "post:drinks"
	PermPatchDrinks     = "patch:drinks"
	PermDeleteDrinks    = "delete:drinks"
)

// Deps are the collaborators the routes need. Limiter may be nil.
type Deps struct {
	Drinks  *drinks.Service
	Auth    Checker
	Limiter ratelimit.Limiter
}

// Register mounts every route on r.
func Register(r gin.IRouter, d Deps) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	r.GET("/drinks", handlers.HandleDrinksGET(d.Drinks))
	r.GET("/drinks-detail",
		RequirePermission(d.Auth, PermGetDrinksDetail),
		RateLimit(d.Limiter, ratelimit.BucketDrinksDetail),
		handlers.HandleDrinksDetailGET(d.Drinks))
	r.POST("/drinks",
		RequirePermission(d.Auth, PermPostDrinks),
		RateLimit(d.Limiter, ratelimit.BucketDrinksCreate),
		handlers.HandleDrinksPOST(d.Drinks))
	r.PATCH("/drinks/:id",
		RequirePermission(d.Auth, PermPatchDrinks),
		RateLimit(d.Limiter, ratelimit.BucketDrinksUpdate),
		handlers.HandleDrinkPATCH(d.Drinks))
	r.DELETE("/drinks/:id",
		RequirePermission(d.Auth, PermDeleteDrinks),
		RateLimit(d.Limiter, ratelimit.BucketDrinksDelete),
		handlers.HandleDrinkDELETE(d.Drinks))
}
