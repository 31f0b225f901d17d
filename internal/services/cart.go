package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/normalization"
	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
	"github.com/stitchfade/boutique-backend/internal/requestdata"
	"github.com/stitchfade/boutique-backend/internal/types"
)

// CartView is one cart line joined with its catalog fields for display.
// Catalog fields stay zero when the item has since disappeared from the
// catalog; the selection itself is never hidden.
type CartView struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Price    int64     `json:"price_cents"`
	ImageURL string    `json:"image_url"`
	Size     string    `json:"size"`
	Quantity int       `json:"quantity"`
}

type CartService interface {
	AddItem(ctx context.Context, itemID uuid.UUID, size string) error
	GetCart(ctx context.Context) ([]CartView, error)
}

type cartService struct {
	db           *gorm.DB
	log          *logger.Logger
	cartRepo     repos.CartRepo
	clothingRepo repos.ClothingRepo
	strictSizes  bool

	// One mutex per user serializes the read-modify-write on that user's
	// cart document. Contention is only ever same-user, so this costs
	// nothing across users.
	userLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewCartService(db *gorm.DB, log *logger.Logger, cartRepo repos.CartRepo, clothingRepo repos.ClothingRepo, strictSizes bool) CartService {
	serviceLog := log.With("service", "CartService")
	return &cartService{
		db:           db,
		log:          serviceLog,
		cartRepo:     cartRepo,
		clothingRepo: clothingRepo,
		strictSizes:  strictSizes,
	}
}

func (cs *cartService) lockFor(userID uuid.UUID) *sync.Mutex {
	mu, _ := cs.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (cs *cartService) AddItem(ctx context.Context, itemID uuid.UUID, size string) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("no resolved user on request"))
	}

	size = normalization.TrimInputString(size)
	if size == "" {
		return apierr.ValidationFailure(fmt.Errorf("size is required"))
	}

	items, err := cs.clothingRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
	if err != nil {
		cs.log.Warn("Catalog lookup failed", "item_id", itemID, "error", err)
		return apierr.PersistenceFailure(fmt.Errorf("catalog lookup: %w", err))
	}
	if len(items) == 0 {
		return apierr.ItemNotFound(fmt.Errorf("clothing item %s does not exist", itemID))
	}
	if cs.strictSizes && !items[0].HasSize(size) {
		return apierr.ValidationFailure(fmt.Errorf("size %q is not offered for %q", size, items[0].Name))
	}

	mu := cs.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			if err != repos.ErrCartNotFound {
				return err
			}
			cart = &types.Cart{UserID: userID}
		}

		lines := cart.Lines.Data()
		merged := false
		for i := range lines {
			if lines[i].ItemID == itemID && lines[i].Size == size {
				lines[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, types.CartLine{ItemID: itemID, Size: size, Quantity: 1})
		}
		cart.Lines = datatypes.NewJSONType(lines)

		return cs.cartRepo.Save(ctx, tx, cart)
	})
	if err != nil {
		cs.log.Warn("Cart write failed", "user_id", userID, "error", err)
		return apierr.PersistenceFailure(fmt.Errorf("save cart: %w", err))
	}
	return nil
}

func (cs *cartService) GetCart(ctx context.Context) ([]CartView, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("no resolved user on request"))
	}

	cart, err := cs.cartRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if err == repos.ErrCartNotFound {
			// No cart yet reads as an empty cart, not an error.
			return []CartView{}, nil
		}
		cs.log.Warn("Cart read failed", "user_id", userID, "error", err)
		return nil, apierr.PersistenceFailure(fmt.Errorf("load cart: %w", err))
	}

	lines := cart.Lines.Data()
	itemIDs := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		itemIDs = append(itemIDs, line.ItemID)
	}

	items, err := cs.clothingRepo.GetByIDs(ctx, nil, itemIDs)
	if err != nil {
		cs.log.Warn("Catalog enrichment failed", "user_id", userID, "error", err)
		return nil, apierr.PersistenceFailure(fmt.Errorf("enrich cart: %w", err))
	}
	byID := make(map[uuid.UUID]*types.ClothingItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	views := make([]CartView, 0, len(lines))
	for _, line := range lines {
		view := CartView{
			ItemID:   line.ItemID,
			Size:     line.Size,
			Quantity: line.Quantity,
		}
		if item, ok := byID[line.ItemID]; ok {
			view.Name = item.Name
			view.Price = item.Price
			view.ImageURL = item.ImageURL
		}
		views = append(views, view)
	}
	return views, nil
}
