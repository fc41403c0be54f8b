package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/adapters/ginutil"
	"github.com/open-rails/coffeeshop/drinks"
)

// HandleDrinkDELETE removes a drink and echoes its id. Requires delete:drinks.
func HandleDrinkDELETE(svc *drinks.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := drinkID(c)
		if !ok {
			ginutil.NotFound(c)
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			ginutil.DrinkErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "delete": id})
	}
}

// drinkID parses the :id path parameter; anything but a positive integer is not found.
func drinkID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
