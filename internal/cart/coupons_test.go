package cart

import (
	"testing"

	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestStaticResolver_KnownCodes(t *testing.T) {
	t.Parallel()

	resolver := NewStaticResolver()

	save10 := resolver.Resolve("SAVE10")
	if save10 == nil {
		t.Fatal("expected SAVE10 to resolve")
	}
	if save10.Type != enums.CouponTypePercentage || !save10.Discount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected SAVE10 coupon: %+v", save10)
	}

	save5 := resolver.Resolve("save5")
	if save5 == nil {
		t.Fatal("expected lowercase save5 to resolve")
	}
	if save5.Type != enums.CouponTypeFixed || !save5.Discount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected SAVE5 coupon: %+v", save5)
	}
}

func TestStaticResolver_UnknownCode(t *testing.T) {
	t.Parallel()

	if got := NewStaticResolver().Resolve("WELCOME20"); got != nil {
		t.Fatalf("expected nil for unknown code, got %+v", got)
	}
}
