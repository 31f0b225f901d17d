package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
	"github.com/stitchfade/boutique-backend/internal/types"
)

type CatalogService interface {
	List(ctx context.Context) ([]*types.ClothingItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*types.ClothingItem, error)
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	clothingRepo repos.ClothingRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, clothingRepo repos.ClothingRepo) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{db: db, log: serviceLog, clothingRepo: clothingRepo}
}

func (cs *catalogService) List(ctx context.Context) ([]*types.ClothingItem, error) {
	items, err := cs.clothingRepo.ListAll(ctx, nil)
	if err != nil {
		cs.log.Warn("Catalog listing failed", "error", err)
		return nil, apierr.PersistenceFailure(fmt.Errorf("list catalog: %w", err))
	}
	if items == nil {
		items = []*types.ClothingItem{}
	}
	return items, nil
}

func (cs *catalogService) GetItem(ctx context.Context, itemID uuid.UUID) (*types.ClothingItem, error) {
	items, err := cs.clothingRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
	if err != nil {
		cs.log.Warn("Catalog item lookup failed", "item_id", itemID, "error", err)
		return nil, apierr.PersistenceFailure(fmt.Errorf("get catalog item: %w", err))
	}
	if len(items) == 0 {
		return nil, apierr.ItemNotFound(fmt.Errorf("clothing item %s does not exist", itemID))
	}
	return items[0], nil
}
