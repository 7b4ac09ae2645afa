package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
	"github.com/teebox-golf/teebox-api/pkg/response"
)

// RequireRoles restricts a route to the listed staff roles. It expects JWT
// middleware to have stored claims on the context already.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
