package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/greencartlabs/greencart-backend/internal/products"
)

// StockAdjuster applies inventory changes through the catalog repository,
// rebound to whatever transaction the caller has open.
type StockAdjuster struct{}

// NewStockAdjuster builds the default inventory adjuster.
func NewStockAdjuster() StockAdjuster {
	return StockAdjuster{}
}

func (StockAdjuster) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	return product.NewRepository(tx).DecrementStock(ctx, productID, qty)
}

func (StockAdjuster) Increment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return product.NewRepository(tx).IncrementStock(ctx, productID, qty)
}
