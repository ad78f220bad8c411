package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/internal/service"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
	"github.com/motherland-app/admin-console-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid session token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// AdminOnly rejects any session whose profile type is not Admin. The login
// flow already gates on this; the middleware catches tokens minted before a
// profile was downgraded.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.UserType != models.UserTypeAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser extracts the validated claims from the gin context.
func CurrentUser(c *gin.Context) (*models.JWTClaims, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*models.JWTClaims)
	return claims, ok
}

// Session builds the acting session from the context claims.
func Session(c *gin.Context) models.Session {
	claims, ok := CurrentUser(c)
	if !ok {
		return models.Session{}
	}
	return models.Session{UID: claims.UID, Email: claims.Email, FullName: claims.FullName, UserType: claims.UserType}
}
