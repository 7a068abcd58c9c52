package cart

import (
	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Summary is the derived monetary view of a cart. It is recomputed from the
// current items, coupon and shipping selection on every read and never stored.
type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// Summarize computes the cart's derived values.
func Summarize(c *models.Cart) Summary {
	summary := Summary{
		Subtotal:       decimal.Zero,
		ShippingCost:   decimal.Zero,
		DiscountAmount: decimal.Zero,
	}
	if c == nil {
		return summary
	}

	for _, item := range c.Items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		summary.Subtotal = summary.Subtotal.Add(line)
		summary.ItemCount += item.Quantity
	}

	if c.ShippingMethod != nil {
		summary.ShippingCost = c.ShippingMethod.Price
	}

	if c.Coupon != nil {
		summary.DiscountAmount = c.Coupon.AmountOff(summary.Subtotal)
	}

	summary.Total = summary.Subtotal.Add(summary.ShippingCost).Sub(summary.DiscountAmount)
	return summary
}
