package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Optional извлекает userID из JWT и помещает в context запроса.
// Отсутствующий или невалидный токен - анонимный доступ, запрос проходит дальше.
func (m *Manager) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.Next()
			return
		}

		userID, err := m.Parse(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// Required защищает эндпоинт: 401 без токена, 403 с неподтверждаемым токеном.
func (m *Manager) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}

		userID, err := m.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "invalid credential"})
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
