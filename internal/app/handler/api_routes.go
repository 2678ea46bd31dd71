package handler

import (
	"factoring-backend/internal/app/middleware"
	"factoring-backend/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// REST API маршруты
	api := router.Group("/api")

	anyRole := authMiddleware.WithAuthCheck(role.Employee, role.Manager, role.Admin)

	// ============ Справочники ============
	api.GET("/companies", anyRole, h.GetCompanies)
	api.GET("/contracts", anyRole, h.GetContracts)

	// ============ Поставки (Supplies) ============
	supplies := api.Group("/supplies")
	supplies.Use(anyRole)
	{
		supplies.GET("", h.GetSupplies)
		supplies.GET("/:id", h.GetSupply)
		supplies.POST("", h.CreateSupply)
		supplies.DELETE("/:id", h.DeleteSupply)

		// Первичные документы поставок хранятся в MinIO
		supplies.POST("/:id/document", h.UploadSupplyDocument)
		supplies.GET("/:id/document", h.GetSupplyDocumentURL)
	}

	// ============ Реестры (Registries) ============
	registries := api.Group("/registries")
	registries.Use(anyRole)
	{
		registries.GET("", h.GetRegistries)
		registries.GET("/:id", h.GetRegistry)
		registries.GET("/:id/report", h.GetRegistryReport)

		// Создание и изменение статусов доступны менеджерам и администраторам
		registries.POST("", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.CreateRegistry)
		registries.PUT("/:id/sign", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.SignRegistry)
		registries.PUT("/:id/decline", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.DeclineRegistry)

		// Дисконт живёт при реестре
		registries.GET("/:id/discount", h.GetDiscount)
		registries.POST("/:id/discount", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.CreateDiscount)
		registries.PUT("/:id/discount", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.UpdateDiscount)
	}

	// ============ Неформализованные документы (Documents) ============
	documents := api.Group("/documents")
	documents.Use(anyRole)
	{
		documents.GET("", h.GetDocuments)
		documents.GET("/:id", h.GetDocument)
		documents.POST("", h.CreateDocument)
		documents.PUT("/:id/sign", h.SignDocument)
		documents.PUT("/:id/decline", h.DeclineDocument)
	}

	// ============ Настройки ============
	api.GET("/settings/discount", anyRole, h.GetDiscountSettings)
	api.PUT("/settings/discount", authMiddleware.WithAuthCheck(role.Manager, role.Admin), h.UpdateDiscountSettings)

	api.GET("/free-days", anyRole, h.GetFreeDays)
	api.POST("/free-days", authMiddleware.WithAuthCheck(role.Admin), h.CreateFreeDay)
	api.DELETE("/free-days/:id", authMiddleware.WithAuthCheck(role.Admin), h.DeleteFreeDay)

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		// Публичные эндпоинты
		auth.POST("/register", h.AuthHandler.RegisterUser) // POST регистрация
		auth.POST("/login", h.AuthHandler.LoginUser)       // POST аутентификация JWT

		// Защищенные эндпоинты
		auth.GET("/profile", anyRole, h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", anyRole, h.AuthHandler.UpdateProfile)
		auth.POST("/logout", anyRole, h.AuthHandler.LogoutUser)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
