package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

// Cart is the mutable pre-purchase basket. It is owned by exactly one
// authenticated user or one anonymous guest token, never both. ExpiresAt is
// stamped only on guest carts and refreshed on every write; reaping is
// cooperative and never enforced inline.
type Cart struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          *uuid.UUID            `gorm:"column:user_id;type:uuid;uniqueIndex"`
	GuestToken      *string               `gorm:"column:guest_token;uniqueIndex"`
	Items           []CartItem            `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	Coupon          *types.Coupon         `gorm:"column:coupon;type:jsonb"`
	ShippingAddress *types.Address        `gorm:"column:shipping_address;type:jsonb"`
	ShippingMethod  *types.ShippingMethod `gorm:"column:shipping_method;type:jsonb"`
	PaymentMethod   *enums.PaymentMethod  `gorm:"column:payment_method"`
	Notes           *string               `gorm:"column:notes"`
	ExpiresAt       *time.Time            `gorm:"column:expires_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the cart belongs to an anonymous session.
func (c Cart) IsGuest() bool {
	return c.GuestToken != nil
}
