package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CartLine is one (item, size) selection inside a cart. Lines live as a
// jsonb document on the cart row, so the whole line set is written as a
// single unit.
type CartLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Size     string    `json:"size"`
	Quantity int       `json:"quantity"`
}

// Cart is the per-user aggregate. At most one cart exists per user; lines
// keep insertion order and the (ItemID, Size) pair is unique within one
// cart.
type Cart struct {
	ID        uuid.UUID                        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID                        `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	User      *User                            `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Lines     datatypes.JSONType[[]CartLine]   `gorm:"type:jsonb;column:lines" json:"lines"`
	CreatedAt time.Time                        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time                        `gorm:"not null;default:now()" json:"updated_at"`
}

func (Cart) TableName() string {
	return "cart"
}
