package app

import (
	"github.com/gin-gonic/gin"

	"github.com/stitchfade/boutique-backend/internal/handlers"
	"github.com/stitchfade/boutique-backend/internal/middleware"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/server"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Catalog *handlers.CatalogHandler
	Cart    *handlers.CartHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(serviceset.Auth),
		User:    handlers.NewUserHandler(serviceset.User, serviceset.Photo),
		Catalog: handlers.NewCatalogHandler(serviceset.Catalog),
		Cart:    handlers.NewCartHandler(serviceset.Cart),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		AuthMiddleware: middlewareset.Auth,
		UserHandler:    handlerset.User,
		CatalogHandler: handlerset.Catalog,
		CartHandler:    handlerset.Cart,
		UploadDir:      cfg.UploadDir,
		LoginPath:      cfg.LoginPath,
	})
}
