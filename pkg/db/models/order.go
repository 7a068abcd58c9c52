package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

// returnWindow is how long after delivery a return may still be requested.
const returnWindow = 30 * 24 * time.Hour

// Order is an immutable checkout snapshot plus a mutable status trail. The
// financial fields are copied from the cart at creation and never recomputed.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string                `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Items             []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal          decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,3);not null"`
	ShippingCost      decimal.Decimal       `gorm:"column:shipping_cost;type:numeric(12,3);not null;default:0"`
	Discount          decimal.Decimal       `gorm:"column:discount;type:numeric(12,3);not null;default:0"`
	Coupon            *types.Coupon         `gorm:"column:coupon;type:jsonb"`
	Total             decimal.Decimal       `gorm:"column:total;type:numeric(12,3);not null"`
	Currency          string                `gorm:"column:currency;not null;default:'USD'"`
	Status            enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	StatusHistory     []OrderStatusEntry    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   types.Address         `gorm:"column:shipping_address;type:jsonb;not null"`
	BillingAddress    types.Address         `gorm:"column:billing_address;type:jsonb;not null"`
	ShippingMethod    *types.ShippingMethod `gorm:"column:shipping_method;type:jsonb"`
	Payment           types.Payment         `gorm:"column:payment;type:jsonb;not null"`
	Notes             *string               `gorm:"column:notes"`
	EstimatedDelivery *time.Time            `gorm:"column:estimated_delivery"`
	ActualDelivery    *time.Time            `gorm:"column:actual_delivery"`
	Source            enums.OrderSource     `gorm:"column:source;not null;default:'web'"`
	IPAddress         *string               `gorm:"column:ip_address"`
	UserAgent         *string               `gorm:"column:user_agent"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// CanCancel reports whether the order is still in a cancellable status.
func (o Order) CanCancel() bool {
	return o.Status.Cancellable()
}

// CanReturn reports whether a delivered order is inside the return window.
func (o Order) CanReturn(now time.Time) bool {
	if o.Status != enums.OrderStatusDelivered {
		return false
	}
	deliveredAt := o.UpdatedAt
	if o.ActualDelivery != nil {
		deliveredAt = *o.ActualDelivery
	}
	return now.Sub(deliveredAt) <= returnWindow
}

// IsDelivered reports whether the order reached the delivered status.
func (o Order) IsDelivered() bool {
	return o.Status == enums.OrderStatusDelivered
}

// IsCancelled reports whether the order was cancelled.
func (o Order) IsCancelled() bool {
	return o.Status == enums.OrderStatusCancelled
}
