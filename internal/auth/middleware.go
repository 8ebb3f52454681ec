package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const accessTokenCookie = "accessToken"

// validates access tokens and adds user info to context. Accepts
// either a bearer header (mobile) or the accessToken cookie (web).
func AuthMiddleware(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		if token == "" {
			if cookie, err := c.Cookie(accessTokenCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := issuer.ValidateAccess(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")

	if !exists {
		return "", false
	}

	return userID.(string), true
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
