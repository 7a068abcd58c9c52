package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/pkg/types"
)

// CartItem is one line in a cart. UnitPrice is captured at add-time from the
// variant price or the product's discounted price and is not re-fetched live.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Variant   *types.Variant  `gorm:"column:variant;type:jsonb"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SameSelection reports whether the line matches the given product and
// variant by value. Lines differing only by variant are distinct.
func (i CartItem) SameSelection(productID uuid.UUID, variant *types.Variant) bool {
	if i.ProductID != productID {
		return false
	}
	if i.Variant == nil && variant == nil {
		return true
	}
	if i.Variant == nil || variant == nil {
		return false
	}
	return i.Variant.Matches(*variant)
}
