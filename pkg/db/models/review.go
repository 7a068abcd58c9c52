package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating attached to a product. One review per
// (product, user) pair, enforced by a unique index.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	Rating    int       `gorm:"column:rating;not null"`
	Title     string    `gorm:"column:title;not null"`
	Comment   string    `gorm:"column:comment;not null"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
