package app

import (
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Clothing  repos.ClothingRepo
	Cart      repos.CartRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Clothing:  repos.NewClothingRepo(db, log),
		Cart:      repos.NewCartRepo(db, log),
	}
}
