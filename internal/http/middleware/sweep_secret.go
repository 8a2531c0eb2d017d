package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Заголовок с общим секретом планировщика свипа.
const SweepSecretHeader = "X-Sweep-Secret"

// SweepSecretMiddleware пускает запрос только с правильным общим секретом.
// Пустой секрет отключает проверку (development).
func SweepSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(SweepSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный секрет свипа"})
			return
		}

		c.Next()
	}
}
