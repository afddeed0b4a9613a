package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/auth"
	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/rbac"
)

// RequireCapability gates a route on one capability. It runs after the
// authentication middleware and before the handler, so a denied caller
// never reaches the service layer.
func RequireCapability(cap rbac.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(auth.UserContextKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "msg": "unauthorized"})
			c.Abort()
			return
		}

		user, ok := v.(*models.User)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "msg": "unauthorized"})
			c.Abort()
			return
		}

		allowed, err := rbac.Authorize(user.ID, cap)
		if err != nil || !allowed {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "msg": "permission denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
