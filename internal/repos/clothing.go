package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/types"
)

type ClothingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.ClothingItem) ([]*types.ClothingItem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.ClothingItem, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ClothingItem, error)
}

type clothingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClothingRepo(db *gorm.DB, baseLog *logger.Logger) ClothingRepo {
	repoLog := baseLog.With("repo", "ClothingRepo")
	return &clothingRepo{db: db, log: repoLog}
}

func (cr *clothingRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.ClothingItem) ([]*types.ClothingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(items) == 0 {
		return []*types.ClothingItem{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (cr *clothingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.ClothingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ClothingItem
	if len(itemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *clothingRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ClothingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ClothingItem
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
