package types

import (
	"database/sql/driver"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Coupon is the discount applied to a cart or snapshotted onto an order.
type Coupon struct {
	Code     string           `json:"code"`
	Discount decimal.Decimal  `json:"discount"`
	Type     enums.CouponType `json:"type"`
}

// AmountOff computes the discount against the given subtotal. Percentage
// coupons take discount% of the subtotal; fixed coupons are capped at the
// subtotal so the total never goes negative.
func (c Coupon) AmountOff(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case enums.CouponTypePercentage:
		return subtotal.Mul(c.Discount).Div(decimal.NewFromInt(100))
	case enums.CouponTypeFixed:
		if c.Discount.GreaterThan(subtotal) {
			return subtotal
		}
		return c.Discount
	}
	return decimal.Zero
}

// Value implements driver.Valuer.
func (c Coupon) Value() (driver.Value, error) {
	return jsonbValue(c)
}

// Scan implements sql.Scanner.
func (c *Coupon) Scan(value interface{}) error {
	return jsonbScan(c, value)
}
