package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"towerdeck/internal/transport/httpdto"
)

// AdminGuard protects irreversible administrative operations. It expects an
// HS256 bearer token with a role=admin claim signed with the configured
// secret. An empty secret disables the guarded routes entirely.
func AdminGuard(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				httpdto.NewErrorResponse("administrative operations disabled", "FORBIDDEN"))
			return
		}

		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse("missing bearer token", "UNAUTHORIZED"))
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
			return
		}

		if role, _ := claims["role"].(string); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				httpdto.NewErrorResponse("admin role required", "FORBIDDEN"))
			return
		}

		c.Next()
	}
}
