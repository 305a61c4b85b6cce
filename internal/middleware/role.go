package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pangan/internal/auth"
)

func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(UserRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role missing"})
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// RequireWriter admits the roles allowed to change price and reference data.
func RequireWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CanWrite(c.GetString(UserRoleKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
