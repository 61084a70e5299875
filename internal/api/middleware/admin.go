package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/response"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminTokenHeader carries the admin token
const AdminTokenHeader = "X-Admin-Token"

// AdminToken guards admin routes. An empty token leaves them open.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(AdminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			common.LogWarn("admin token rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			response.Error(c, common.ErrUnauthorized.Wrap(errors.New("missing or invalid "+AdminTokenHeader)))
			return
		}
		c.Next()
	}
}
