package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClothingItem struct {
	ID        uuid.UUID                      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string                         `gorm:"not null;column:name" json:"name"`
	Price     int64                          `gorm:"not null;column:price_cents" json:"price_cents"`
	ImageURL  string                         `gorm:"column:image_url" json:"image_url"`
	Sizes     datatypes.JSONType[[]string]   `gorm:"type:jsonb;column:sizes" json:"sizes"`
	CreatedAt time.Time                      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time                      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ClothingItem) TableName() string {
	return "clothing_item"
}

func (ci *ClothingItem) HasSize(size string) bool {
	for _, s := range ci.Sizes.Data() {
		if s == size {
			return true
		}
	}
	return false
}
