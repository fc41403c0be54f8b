package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/drinks"
)

// HandleDrinkPATCH applies a partial update to one drink. Requires patch:drinks.
func HandleDrinkPATCH(svc *drinks.Service) gin.HandlerFunc {
	type patchReq struct {
		Title  *string              `json:"title"`
		Recipe *[]drinks.Ingredient `json:"recipe"`
	}
	return func(c *gin.Context) {
		id, ok := drinkID(c)
		if !ok {
			ginutil.NotFound(c)
			return
		}
		var req patchReq
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid request body")
			return
		}
		d, err := svc.Update(c.Request.Context(), id, drinks.Patch{Title: req.Title, Recipe: req.Recipe})
		if err != nil {
			ginutil.DrinkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []drinks.Drink{d.Long()}})
	}
}
