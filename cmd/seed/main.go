package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/stitchfade/boutique-backend/internal/db"
	"github.com/stitchfade/boutique-backend/internal/platform/envutil"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
	"github.com/stitchfade/boutique-backend/internal/types"
)

type seedItem struct {
	Name       string   `yaml:"name"`
	PriceCents int64    `yaml:"price_cents"`
	ImageURL   string   `yaml:"image_url"`
	Sizes      []string `yaml:"sizes"`
}

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

// Loads clothing items from a YAML fixture into the catalog table.
func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	path := envutil.String("SEED_FILE", "seed/catalog.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read seed file", "path", path, "error", err)
	}

	var fixture seedFile
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		log.Fatal("Failed to parse seed file", "path", path, "error", err)
	}
	if len(fixture.Items) == 0 {
		log.Warn("Seed file contains no items", "path", path)
		return
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	clothingRepo := repos.NewClothingRepo(pg.DB(), log)

	items := make([]*types.ClothingItem, 0, len(fixture.Items))
	for _, si := range fixture.Items {
		items = append(items, &types.ClothingItem{
			ID:       uuid.New(),
			Name:     si.Name,
			Price:    si.PriceCents,
			ImageURL: si.ImageURL,
			Sizes:    datatypes.NewJSONType(si.Sizes),
		})
	}

	if _, err := clothingRepo.Create(context.Background(), nil, items); err != nil {
		log.Fatal("Failed to insert catalog items", "error", err)
	}
	log.Info("Catalog seeded", "count", len(items), "path", path)
}
