// Package response writes the JSON envelopes shared by handlers and middleware.
package response

import (
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Error aborts the request with the status and body mapped from err.
// The error is also attached to the context so the access log reports it.
func Error(c *gin.Context, err error) {
	status, body := common.StatusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
