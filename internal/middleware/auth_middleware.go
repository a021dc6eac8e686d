package middleware

import (
	"net/http"
	"strings"

	"go-pos-terminal/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// TokenValidator is satisfied by *auth.Tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole lets only the given role through. Use after AuthMiddleware.
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists || role != allowedRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}
