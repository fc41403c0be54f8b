package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/drinks"
)

// HandleDrinksDetailGET lists drinks in the long form. Requires get:drinks-detail.
func HandleDrinksDetailGET(svc *drinks.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			ginutil.ServerErr(c, err)
			return
		}
		out := make([]drinks.Drink, 0, len(list))
		for _, d := range list {
			out = append(out, d.Long())
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": out})
	}
}
