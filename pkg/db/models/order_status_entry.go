package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
)

// OrderStatusEntry is one row of an order's append-only status trail. Entries
// are inserted in chronological order and never updated or deleted.
type OrderStatusEntry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Timestamp time.Time         `gorm:"column:timestamp;not null"`
	Note      *string           `gorm:"column:note"`
	UpdatedBy *uuid.UUID        `gorm:"column:updated_by;type:uuid"`
}
