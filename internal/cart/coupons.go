package cart

import (
	"strings"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/greencartlabs/greencart-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Resolver looks up a coupon by code. A nil result means the code is unknown;
// callers ignore unknown codes without signalling an error.
type Resolver interface {
	Resolve(code string) *types.Coupon
}

// StaticResolver serves coupons from a fixed in-memory table.
type StaticResolver struct {
	table map[string]types.Coupon
}

// NewStaticResolver returns the storefront's built-in coupon table.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		table: map[string]types.Coupon{
			"SAVE10": {
				Code:     "SAVE10",
				Discount: decimal.NewFromInt(10),
				Type:     enums.CouponTypePercentage,
			},
			"SAVE5": {
				Code:     "SAVE5",
				Discount: decimal.NewFromInt(5),
				Type:     enums.CouponTypeFixed,
			},
		},
	}
}

// Resolve returns the coupon for the given code, matching case-insensitively.
func (r *StaticResolver) Resolve(code string) *types.Coupon {
	coupon, ok := r.table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	return &coupon
}
