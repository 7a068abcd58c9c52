package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

// Product is a catalog listing. Discount is a percentage of the base price.
// Rating and ReviewCount are denormalized from the reviews table and
// recomputed whenever a review changes.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Description   *string             `gorm:"column:description"`
	CategoryID    *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	SubcategoryID *uuid.UUID          `gorm:"column:subcategory_id;type:uuid"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(5,2);not null;default:0"`
	Variants      types.Variants      `gorm:"column:variants;type:jsonb;not null;default:'[]'"`
	Stock         int                 `gorm:"column:stock;not null;default:0"`
	Status        enums.ProductStatus `gorm:"column:status;not null;default:'active'"`
	Images        pq.StringArray      `gorm:"column:images;type:text[]"`
	Rating        decimal.Decimal     `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	ReviewCount   int                 `gorm:"column:review_count;not null;default:0"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// DiscountedPrice applies the percent discount to the base price.
func (p Product) DiscountedPrice() decimal.Decimal {
	if p.Discount.IsZero() {
		return p.Price
	}
	fraction := p.Discount.Div(decimal.NewFromInt(100))
	return p.Price.Mul(decimal.NewFromInt(1).Sub(fraction))
}

// FirstImage returns the lead catalog image, if any.
func (p Product) FirstImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	image := p.Images[0]
	return &image
}
