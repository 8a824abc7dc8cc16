package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-labs/inkwell/internal/token"
)

const claimsContextKey = "claims"

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (token.Claims, error)
}

// Auth creates an authentication middleware
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			RecordJWTValidation("missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or malformed Authorization header",
				},
			})
			return
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			RecordJWTValidation("failure")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid token",
				},
			})
			return
		}

		RecordJWTValidation("success")
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tokenString := header[len("Bearer "):]
	return tokenString, tokenString != ""
}

// ClaimsFromContext returns the claims set by the Auth middleware.
func ClaimsFromContext(c *gin.Context) (token.Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return token.Claims{}, false
	}
	claims, ok := value.(token.Claims)
	return claims, ok
}
