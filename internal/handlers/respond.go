package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/storefront/internal/apperr"
)

// production suppresses diagnostic fields in 500 bodies.
var production bool

func SetProduction(p bool) { production = p }

// writeError is the single normalization stage: every handler failure
// funnels through here and comes out as {error, message?, details?}.
func writeError(c *gin.Context, err error) {
	e := apperr.From(err)

	if e.Kind == apperr.KindInternal {
		log.Printf("Error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body := gin.H{
			"error":   "Internal server error",
			"message": "An unexpected error occurred",
		}
		if !production && e.Err != nil {
			body["details"] = e.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}

	body := gin.H{"error": e.Message}
	if e.Detail != "" {
		body["message"] = e.Detail
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	c.JSON(e.Status(), body)
}
