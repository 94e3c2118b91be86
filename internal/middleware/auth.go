package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/roadsense/roadsense-backend-go/pkg/response"
)

// Auth guards the write endpoints. A request passes with either a
// configured API key in x-api-key or a valid HS256 bearer token.
// With no keys and no secret configured the guard is disabled, which
// keeps local development friction-free.
func Auth(apiKeys []string, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(apiKeys) == 0 && jwtSecret == "" {
			c.Next()
			return
		}

		if key := c.GetHeader("x-api-key"); key != "" {
			for _, k := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
					c.Next()
					return
				}
			}
			response.Unauthorized(c, "invalid api key")
			c.Abort()
			return
		}

		if jwtSecret != "" {
			header := c.GetHeader("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if subject, err := verifyToken(token, jwtSecret); err == nil {
					c.Set("subject", subject)
					c.Next()
					return
				}
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
		}

		response.Unauthorized(c, "authentication required")
		c.Abort()
	}
}

func verifyToken(tokenString, secret string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}
