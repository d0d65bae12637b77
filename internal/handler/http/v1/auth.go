package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satarknity/community_alerts/internal/config"
	"github.com/sirupsen/logrus"
)

const accessTokenKey = "accessToken"

// BackendConfiguredMiddleware - middleware конфигурационного гейта: пока
// учетные данные внешнего бэкенда не заданы, репортинг отключен и отвечает
// 503 вместо попытки внешнего вызова
func BackendConfiguredMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.BackendConfigured() {
			log.Warn("Reporting request rejected: backend credentials are not configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "community reporting is disabled: backend credentials are not configured",
			})
			return
		}
		c.Next()
	}
}

// AccessTokenMiddleware извлекает bearer-токен из заголовка Authorization.
// Сам токен здесь не проверяется: аутентификация выполняется сервисным слоем
// после валидации полей, чтобы сохранить порядок проверок формы.
func AccessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			c.Set(accessTokenKey, strings.TrimPrefix(authHeader, "Bearer "))
		}
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}
