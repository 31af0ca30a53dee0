// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodcart-backend/internal/pkg/auth"
)

const (
	userIDKey      = "user_id"
	userEmailKey   = "user_email"
	accessTokenKey = "access_token"
	tokenClaimsKey = "token_claims"
)

// TokenValidator validates bearer access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Authorization header required",
				"login_required": true,
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Invalid authorization header format",
				"login_required": true,
			})
			c.Abort()
			return
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Invalid or expired token",
				"login_required": true,
			})
			c.Abort()
			return
		}

		setIdentity(c, claims, tokenString)
		c.Next()
	}
}

// OptionalAuthMiddleware provides optional authentication. Guests and callers
// with an unusable token continue unauthenticated.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		setIdentity(c, claims, tokenString)
		c.Next()
	}
}

func setIdentity(c *gin.Context, claims *auth.Claims, token string) {
	c.Set(userIDKey, claims.UserID)
	c.Set(userEmailKey, claims.Email)
	c.Set(accessTokenKey, token)
	c.Set(tokenClaimsKey, claims)
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	return userID, userID != ""
}

// GetAccessTokenFromContext returns the validated bearer token, which is
// forwarded to the order service
func GetAccessTokenFromContext(c *gin.Context) (string, bool) {
	token := c.GetString(accessTokenKey)
	return token, token != ""
}
