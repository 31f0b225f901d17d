package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/types"
)

// ErrCartNotFound signals that a user has no cart row yet. Callers decide
// whether that means "empty cart" (reads) or "create one" (writes).
var ErrCartNotFound = errors.New("cart not found")

type CartRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error)
	// Save writes the cart row including its whole lines document in one
	// statement; it is the single atomic commit point for cart mutations.
	Save(ctx context.Context, tx *gorm.DB, cart *types.Cart) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	repoLog := baseLog.With("repo", "CartRepo")
	return &cartRepo{db: db, log: repoLog}
}

func (cr *cartRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var cart types.Cart
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (cr *cartRepo) Save(ctx context.Context, tx *gorm.DB, cart *types.Cart) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
		return transaction.WithContext(ctx).Create(cart).Error
	}
	return transaction.WithContext(ctx).Save(cart).Error
}
