package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

func TestSummarize_EmptyCart(t *testing.T) {
	t.Parallel()

	summary := Summarize(&models.Cart{})
	if !summary.Subtotal.IsZero() || !summary.Total.IsZero() || summary.ItemCount != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSummarize_SubtotalAndItemCount(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{
		Items: []models.CartItem{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("4.99")},
			{Quantity: 3, UnitPrice: decimal.RequireFromString("1.25")},
		},
	}

	summary := Summarize(cart)
	if !summary.Subtotal.Equal(decimal.RequireFromString("13.73")) {
		t.Fatalf("expected subtotal 13.73, got %s", summary.Subtotal)
	}
	if summary.ItemCount != 5 {
		t.Fatalf("expected item count 5, got %d", summary.ItemCount)
	}
	if !summary.Total.Equal(summary.Subtotal) {
		t.Fatalf("expected total to equal subtotal with no shipping or coupon, got %s", summary.Total)
	}
}

func TestSummarize_PercentageCouponScenario(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{
		Items: []models.CartItem{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("4.99")},
		},
		ShippingMethod: &types.ShippingMethod{
			Name:  "Standard",
			Price: decimal.RequireFromString("5.00"),
		},
		Coupon: &types.Coupon{
			Code:     "SAVE10",
			Discount: decimal.NewFromInt(10),
			Type:     enums.CouponTypePercentage,
		},
	}

	summary := Summarize(cart)
	if !summary.Subtotal.Equal(decimal.RequireFromString("9.98")) {
		t.Fatalf("expected subtotal 9.98, got %s", summary.Subtotal)
	}
	if !summary.DiscountAmount.Equal(decimal.RequireFromString("0.998")) {
		t.Fatalf("expected discount 0.998, got %s", summary.DiscountAmount)
	}
	if !summary.Total.Equal(decimal.RequireFromString("13.982")) {
		t.Fatalf("expected total 13.982, got %s", summary.Total)
	}
}

func TestSummarize_FixedCouponCappedAtSubtotal(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{
		Items: []models.CartItem{
			{Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
		},
		Coupon: &types.Coupon{
			Code:     "SAVE5",
			Discount: decimal.NewFromInt(5),
			Type:     enums.CouponTypeFixed,
		},
	}

	summary := Summarize(cart)
	if !summary.DiscountAmount.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected discount capped at 3.00, got %s", summary.DiscountAmount)
	}
	if !summary.Total.IsZero() {
		t.Fatalf("expected total 0, got %s", summary.Total)
	}
}

func TestSummarize_NilCart(t *testing.T) {
	t.Parallel()

	summary := Summarize(nil)
	if summary.ItemCount != 0 || !summary.Total.IsZero() {
		t.Fatalf("expected zero summary for nil cart, got %+v", summary)
	}
}

func TestCartItemSameSelection(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	sizeLarge := &types.Variant{Name: "size", Val: "large"}
	sizeSmall := &types.Variant{Name: "size", Val: "small"}

	item := models.CartItem{ProductID: productID, Variant: sizeLarge}

	if !item.SameSelection(productID, &types.Variant{Name: "size", Val: "large"}) {
		t.Fatal("expected matching variant selection")
	}
	if item.SameSelection(productID, sizeSmall) {
		t.Fatal("expected differing variant values to be distinct")
	}
	if item.SameSelection(productID, nil) {
		t.Fatal("expected variant line to differ from no-variant selection")
	}
	if item.SameSelection(uuid.New(), sizeLarge) {
		t.Fatal("expected differing products to be distinct")
	}
}
