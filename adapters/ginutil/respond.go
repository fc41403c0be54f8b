// Package ginutil holds the JSON envelopes and request plumbing shared by
// the gin adapter.
package ginutil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-rails/coffeeshop/auth"
	"github.com/open-rails/coffeeshop/drinks"
)

// AuthFailed aborts with the auth error envelope.
func AuthFailed(c *gin.Context, err error) {
	kind := auth.KindOf(err)
	status := kind.HTTPStatus()
	if status == http.StatusInternalServerError {
		ServerErr(c, err)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": status, "code": kind, "message": auth.PublicMessage(err)})
}

// DrinkErr writes the response for an error returned by drinks.Service.
func DrinkErr(c *gin.Context, err error) {
	var ve *drinks.ValidationError
	switch {
	case errors.As(err, &ve):
		Unprocessable(c, ve.Error())
	case errors.Is(err, drinks.ErrTitleTaken):
		Unprocessable(c, err.Error())
	case errors.Is(err, drinks.ErrNotFound):
		NotFound(c)
	default:
		ServerErr(c, err)
	}
}

func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": http.StatusNotFound, "message": "resource not found"})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func Unprocessable(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": msg})
}

func TooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": http.StatusTooManyRequests, "message": "too many requests"})
}

// ServerErr logs err against the request and answers with a generic 500.
func ServerErr(c *gin.Context, err error) {
	Logger(c).WithError(err).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": http.StatusInternalServerError, "message": "internal server error"})
}
