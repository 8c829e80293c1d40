package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-gms/models"
	"campus-gms/types"
)

// Context keys set by the auth middlewares.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
)

// TokenValidator checks an access token.
type TokenValidator interface {
	ValidateAccessToken(token string) (*types.Claims, error)
}

// UserLoader loads the active account a token belongs to.
type UserLoader interface {
	UserByID(id uint) (*models.User, error)
}

func abortUnauthorized(c *gin.Context, errMsg, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   errMsg,
		"message": message,
	})
}

// authenticate resolves token to a user and stores it on the context.
func authenticate(c *gin.Context, token string, tokens TokenValidator, users UserLoader, logger *zap.Logger) bool {
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		logger.Debug("🔍 Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abortUnauthorized(c, "Invalid token", "Token is invalid or expired")
		return false
	}

	user, err := users.UserByID(claims.UserID)
	if err != nil {
		logger.Debug("🔍 Token user rejected", zap.Uint("user_id", claims.UserID), zap.Error(err))
		abortUnauthorized(c, "User not found", "User associated with token not found or deactivated")
		return false
	}

	c.Set(ContextUser, user)
	c.Set(ContextUserID, user.ID)
	return true
}

// AuthMiddleware validates the Bearer token and sets the user context.
func AuthMiddleware(tokens TokenValidator, users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required", "Please provide a valid token")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			abortUnauthorized(c, "Invalid token format", "Token must be in format: Bearer <token>")
			return
		}

		if authenticate(c, tokenString, tokens, users, logger) {
			c.Next()
		}
	}
}

// WebSocketAuthMiddleware reads the token from the query string, since
// browsers cannot set headers on a websocket upgrade.
func WebSocketAuthMiddleware(tokens TokenValidator, users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			abortUnauthorized(c, "Token required", "Please provide a valid token in query parameters")
			return
		}
		if authenticate(c, tokenString, tokens, users, logger) {
			c.Next()
		}
	}
}

// RequireRole lets only the given roles through. It must run after one of
// the auth middlewares.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "Authentication required", "Please sign in")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Forbidden",
			"message": "Your role does not allow this action",
		})
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
