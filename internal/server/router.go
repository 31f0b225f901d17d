package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stitchfade/boutique-backend/internal/handlers"
	"github.com/stitchfade/boutique-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	CatalogHandler *handlers.CatalogHandler
	CartHandler    *handlers.CartHandler
	UploadDir      string
	LoginPath      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/signup", cfg.AuthHandler.Signup)
	router.POST("/login", cfg.AuthHandler.Login)
	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.POST("/logout-all", cfg.AuthHandler.LogoutAll)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/upload-photo", cfg.UserHandler.UploadPhoto)
	// Cart mutation
	protected.POST("/cart/add", cfg.CartHandler.AddItem)

	// Page endpoints send anonymous browsers back to login instead of 401.
	pages := router.Group("/")
	pages.Use(cfg.AuthMiddleware.RequireAuthOrRedirect(cfg.LoginPath))
	pages.GET("/catalog", cfg.CatalogHandler.List)
	pages.GET("/catalog/:id", cfg.CatalogHandler.GetItem)
	pages.GET("/cart", cfg.CartHandler.GetCart)

	return router
}
