package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

type stubCartRepo struct {
	byUser  map[uuid.UUID]*models.Cart
	byGuest map[string]*models.Cart
	deleted []uuid.UUID
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		byUser:  map[uuid.UUID]*models.Cart{},
		byGuest: map[string]*models.Cart{},
	}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if cart, ok := s.byUser[userID]; ok {
		return cart, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindByGuestToken(ctx context.Context, token string) (*models.Cart, error) {
	if cart, ok := s.byGuest[token]; ok {
		return cart, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.UserID != nil {
		s.byUser[*cart.UserID] = cart
	}
	if cart.GuestToken != nil {
		s.byGuest[*cart.GuestToken] = cart
	}
	return cart, nil
}

func (s *stubCartRepo) Update(ctx context.Context, cart *models.Cart) error { return nil }

func (s *stubCartRepo) UpsertItem(ctx context.Context, item *models.CartItem) error { return nil }

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error { return nil }

func (s *stubCartRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error { return nil }

func (s *stubCartRepo) Delete(ctx context.Context, cartID uuid.UUID) error {
	s.deleted = append(s.deleted, cartID)
	for token, cart := range s.byGuest {
		if cart.ID == cartID {
			delete(s.byGuest, token)
		}
	}
	return nil
}

func (s *stubCartRepo) DeleteExpiredGuestCarts(ctx context.Context, before time.Time, limit int) (int64, error) {
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func activeProduct(name, price string, stock int) *models.Product {
	return &models.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: enums.ProductStatusActive,
	}
}

func newCartTestService(t *testing.T, repo CartRepository, loader productLoader) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, loader, NewStaticResolver(), 720*time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestGet_CreatesCartLazily(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	svc := newCartTestService(t, repo, &stubProductLoader{})
	userID := uuid.New()

	view, err := svc.Get(context.Background(), UserOwner(userID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.UserID == nil || *view.Cart.UserID != userID {
		t.Fatalf("expected cart owned by user, got %+v", view.Cart)
	}
	if view.Cart.ExpiresAt != nil {
		t.Fatal("user carts must not carry an expiry stamp")
	}

	again, err := svc.Get(context.Background(), UserOwner(userID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Cart.ID != view.Cart.ID {
		t.Fatal("expected find-or-create to be idempotent")
	}
}

func TestGet_GuestCartGetsExpiryStamp(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	svc := newCartTestService(t, repo, &stubProductLoader{})

	before := time.Now()
	view, err := svc.Get(context.Background(), GuestOwner("guest-abc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.ExpiresAt == nil {
		t.Fatal("expected guest cart expiry stamp")
	}
	lower := before.Add(720*time.Hour - time.Minute)
	upper := time.Now().Add(720*time.Hour + time.Minute)
	if view.Cart.ExpiresAt.Before(lower) || view.Cart.ExpiresAt.After(upper) {
		t.Fatalf("expiry %v not ~30 days out", view.Cart.ExpiresAt)
	}
}

func TestOwnerValidation(t *testing.T) {
	t.Parallel()

	svc := newCartTestService(t, newStubCartRepo(), &stubProductLoader{})

	userID := uuid.New()
	token := "guest-1"
	_, err := svc.Get(context.Background(), Owner{UserID: &userID, GuestToken: &token})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for dual owner, got %v", err)
	}

	_, err = svc.Get(context.Background(), Owner{})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty owner, got %v", err)
	}
}

func TestAddItem_MergesMatchingLines(t *testing.T) {
	t.Parallel()

	apples := activeProduct("Apples", "4.99", 100)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{apples.ID: apples}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: apples.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: apples.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(view.Cart.Items))
	}
	if view.Cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", view.Cart.Items[0].Quantity)
	}
}

func TestAddItem_DistinctVariantsAreDistinctLines(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("2.50")
	milk := activeProduct("Milk", "2.00", 50)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{milk.ID: milk}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	half := &types.Variant{Name: "size", Val: "half-gallon", Price: &price}
	full := &types.Variant{Name: "size", Val: "gallon"}

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: milk.ID, Quantity: 1, Variant: half}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: milk.ID, Quantity: 1, Variant: full})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Cart.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(view.Cart.Items))
	}
	if !view.Cart.Items[0].UnitPrice.Equal(price) {
		t.Fatalf("expected variant price captured, got %s", view.Cart.Items[0].UnitPrice)
	}
	if !view.Cart.Items[1].UnitPrice.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected product price fallback, got %s", view.Cart.Items[1].UnitPrice)
	}
}

func TestAddItem_CapturesDiscountedPrice(t *testing.T) {
	t.Parallel()

	bread := activeProduct("Bread", "4.00", 10)
	bread.Discount = decimal.NewFromInt(25)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{bread.ID: bread}}
	svc := newCartTestService(t, newStubCartRepo(), loader)

	view, err := svc.AddItem(context.Background(), UserOwner(uuid.New()), AddItemInput{ProductID: bread.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected discounted price 3.00, got %s", view.Cart.Items[0].UnitPrice)
	}
}

func TestAddItem_Failures(t *testing.T) {
	t.Parallel()

	inactive := activeProduct("Seasonal Pie", "9.99", 10)
	inactive.Status = enums.ProductStatusInactive
	low := activeProduct("Eggs", "3.99", 1)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		inactive.ID: inactive,
		low.ID:      low,
	}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), owner, AddItemInput{ProductID: inactive.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), owner, AddItemInput{ProductID: low.ID, Quantity: 2})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), owner, AddItemInput{ProductID: low.ID, Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	t.Parallel()

	apples := activeProduct("Apples", "4.99", 100)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{apples.ID: apples}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	view, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: apples.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lineID := view.Cart.Items[0].ID

	view, err = svc.UpdateItemQuantity(context.Background(), owner, lineID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Items[0].Quantity != 7 {
		t.Fatalf("expected exact quantity 7, got %d", view.Cart.Items[0].Quantity)
	}

	view, err = svc.UpdateItemQuantity(context.Background(), owner, lineID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("expected zero quantity to remove the line, got %d lines", len(view.Cart.Items))
	}

	// Missing lines are treated as already removed.
	if _, err := svc.UpdateItemQuantity(context.Background(), owner, uuid.New(), 3); err != nil {
		t.Fatalf("expected no-op for missing line, got %v", err)
	}
}

func TestClear_EmptiesItemsAndCoupon(t *testing.T) {
	t.Parallel()

	apples := activeProduct("Apples", "4.99", 100)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{apples.ID: apples}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: apples.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ApplyCoupon(context.Background(), owner, "SAVE10"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.Clear(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 0 || view.Cart.Coupon != nil {
		t.Fatalf("expected empty cart without coupon, got %+v", view.Cart)
	}
}

func TestApplyCoupon(t *testing.T) {
	t.Parallel()

	apples := activeProduct("Apples", "4.99", 100)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{apples.ID: apples}}
	svc := newCartTestService(t, newStubCartRepo(), loader)
	owner := UserOwner(uuid.New())

	// Empty cart is rejected before any lookup.
	_, err := svc.ApplyCoupon(context.Background(), owner, "SAVE10")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeEmptyCart {
		t.Fatalf("expected empty cart error, got %v", err)
	}

	if _, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: apples.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown codes are silently ignored.
	view, err := svc.ApplyCoupon(context.Background(), owner, "WELCOME20")
	if err != nil {
		t.Fatalf("expected unknown code to be ignored, got %v", err)
	}
	if view.Cart.Coupon != nil {
		t.Fatalf("expected no coupon, got %+v", view.Cart.Coupon)
	}

	view, err = svc.ApplyCoupon(context.Background(), owner, "SAVE10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Coupon == nil || view.Cart.Coupon.Code != "SAVE10" {
		t.Fatalf("expected SAVE10 applied, got %+v", view.Cart.Coupon)
	}
	if !view.Summary.DiscountAmount.Equal(decimal.RequireFromString("0.998")) {
		t.Fatalf("expected discount 0.998, got %s", view.Summary.DiscountAmount)
	}

	view, err = svc.RemoveCoupon(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Cart.Coupon != nil {
		t.Fatal("expected coupon removed")
	}
}

func TestMergeGuestIntoUser(t *testing.T) {
	t.Parallel()

	apples := activeProduct("Apples", "4.99", 100)
	milk := activeProduct("Milk", "2.00", 50)
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		apples.ID: apples,
		milk.ID:   milk,
	}}
	repo := newStubCartRepo()
	svc := newCartTestService(t, repo, loader)

	userID := uuid.New()
	guestToken := "guest-merge"

	if _, err := svc.AddItem(context.Background(), UserOwner(userID), AddItemInput{ProductID: apples.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), GuestOwner(guestToken), AddItemInput{ProductID: apples.ID, Quantity: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), GuestOwner(guestToken), AddItemInput{ProductID: milk.ID, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.MergeGuestIntoUser(context.Background(), guestToken, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 2 {
		t.Fatalf("expected two lines after merge, got %d", len(view.Cart.Items))
	}
	for _, line := range view.Cart.Items {
		if line.ProductID == apples.ID && line.Quantity != 5 {
			t.Fatalf("expected merged apples quantity 5, got %d", line.Quantity)
		}
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected guest cart deleted, got %v", repo.deleted)
	}
	if _, ok := repo.byGuest[guestToken]; ok {
		t.Fatal("guest cart should be gone after merge")
	}
}

func TestMergeGuestIntoUser_NoGuestCart(t *testing.T) {
	t.Parallel()

	svc := newCartTestService(t, newStubCartRepo(), &stubProductLoader{})

	view, err := svc.MergeGuestIntoUser(context.Background(), "missing", uuid.New())
	if err != nil {
		t.Fatalf("expected merge with no guest cart to succeed, got %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatalf("expected empty user cart, got %d lines", len(view.Cart.Items))
	}
}
