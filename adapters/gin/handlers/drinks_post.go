package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/drinks"
)

// HandleDrinksPOST creates a drink. Requires post:drinks.
func HandleDrinksPOST(svc *drinks.Service) gin.HandlerFunc {
	type createReq struct {
		Title  string              `json:"title"`
		Recipe []drinks.Ingredient `json:"recipe"`
	}
	return func(c *gin.Context) {
		var req createReq
		if err := c.ShouldBindJSON(&req); err != nil {
			ginutil.BadRequest(c, "invalid request body")
			return
		}
		d, err := svc.Create(c.Request.Context(), drinks.NewDrink{Title: req.Title, Recipe: req.Recipe})
		if err != nil {
			ginutil.DrinkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []drinks.Drink{d.Long()}})
	}
}
