package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Health-check доступен и без настроенного внешнего бэкенда
	api.GET("/system/health", h.healthCheck)

	reporting := api.Group("")
	reporting.Use(BackendConfiguredMiddleware(h.cfg, h.logger))
	reporting.Use(AccessTokenMiddleware())

	// Маршруты держателя сессии
	auth := reporting.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/signin", h.signIn)
		auth.POST("/signout", h.signOut)
		auth.GET("/user", h.currentUser)
	}

	// Маршруты отчетов: отправка и лента
	incidents := reporting.Group("/incidents")
	{
		incidents.POST("", h.submitIncident)
		incidents.GET("", h.listIncidents)
	}

	// Обратное геокодирование для автозаполнения поля location
	reporting.POST("/location/resolve", h.resolveLocation)
}
