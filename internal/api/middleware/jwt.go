package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/roksva123/go-planning-backend/internal/model"
)

// Context keys set by JWTAuth.
const (
	ClaimsKey   = "claims"
	UserIDKey   = "userID"
	UsernameKey = "username"
)

func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ResponseApi{Error: "missing token"})
			return
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ResponseApi{Error: "invalid header"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ResponseApi{Error: "invalid token"})
			return
		}

		sub, _ := claims.GetSubject()
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ResponseApi{Error: "invalid token payload"})
			return
		}
		username, _ := claims["username"].(string)

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, sub)
		c.Set(UsernameKey, username)
		c.Next()
	}
}
