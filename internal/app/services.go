package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	User    services.UserService
	Catalog services.CatalogService
	Cart    services.CartService
	Photo   services.PhotoService
	Avatar  services.AvatarService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	avatarService, err := services.NewAvatarService(log, cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(
		db,
		log,
		reposet.User,
		reposet.UserToken,
		avatarService,
		clients.TokenCache,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, reposet.User)
	catalogService := services.NewCatalogService(db, log, reposet.Clothing)
	cartService := services.NewCartService(db, log, reposet.Cart, reposet.Clothing, cfg.StrictSizes)
	photoService := services.NewPhotoService(log, reposet.User, cfg.UploadDir, cfg.UploadBaseURL)

	return Services{
		Auth:    authService,
		User:    userService,
		Catalog: catalogService,
		Cart:    cartService,
		Photo:   photoService,
		Avatar:  avatarService,
	}, nil
}
