package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Owner identifies who a cart belongs to: exactly one of an authenticated
// user or an anonymous guest token.
type Owner struct {
	UserID     *uuid.UUID
	GuestToken *string
}

// UserOwner builds an Owner for an authenticated user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner builds an Owner for an anonymous guest token.
func GuestOwner(token string) Owner {
	return Owner{GuestToken: &token}
}

func (o Owner) validate() error {
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	hasGuest := o.GuestToken != nil && strings.TrimSpace(*o.GuestToken) != ""
	if hasUser == hasGuest {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner must be exactly one of user or guest")
	}
	return nil
}

// View pairs the persisted cart with its freshly computed summary.
type View struct {
	Cart    *models.Cart `json:"cart"`
	Summary Summary      `json:"summary"`
}

// AddItemInput is the payload for adding a line to a cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   *types.Variant
}

// Service exposes the cart pricing engine.
type Service interface {
	Get(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*View, error)
	UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, owner Owner) (*View, error)
	ApplyCoupon(ctx context.Context, owner Owner, code string) (*View, error)
	RemoveCoupon(ctx context.Context, owner Owner) (*View, error)
	SetShippingAddress(ctx context.Context, owner Owner, address types.Address) (*View, error)
	SetShippingMethod(ctx context.Context, owner Owner, method types.ShippingMethod) (*View, error)
	SetPaymentMethod(ctx context.Context, owner Owner, method enums.PaymentMethod) (*View, error)
	SetNotes(ctx context.Context, owner Owner, notes string) (*View, error)
	MergeGuestIntoUser(ctx context.Context, guestToken string, userID uuid.UUID) (*View, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	coupons  Resolver
	guestTTL time.Duration
	now      func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, coupons Resolver, guestTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if guestTTL <= 0 {
		return nil, fmt.Errorf("guest cart TTL must be positive")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		coupons:  coupons,
		guestTTL: guestTTL,
		now:      time.Now,
	}, nil
}

// Get returns the owner's cart, lazily creating an empty one on first access.
func (s *service) Get(ctx context.Context, owner Owner) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.addLine(ctx, cart, input); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// addLine runs the addItem semantics against an already-loaded cart: merge
// into an existing (product, variant) line or append a new one with the unit
// price captured now.
func (s *service) addLine(ctx context.Context, cart *models.Cart, input AddItemInput) error {
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Variant != nil && input.Variant.IsZero() {
		input.Variant = nil
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusActive {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "product is not available").
			WithDetails(map[string]any{"product": product.Name})
	}
	if product.Stock < input.Quantity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", product.Name)).
			WithDetails(map[string]any{"product": product.Name, "available": product.Stock})
	}

	for i := range cart.Items {
		if cart.Items[i].SameSelection(input.ProductID, input.Variant) {
			cart.Items[i].Quantity += input.Quantity
			return s.persistLine(ctx, cart, &cart.Items[i])
		}
	}

	unitPrice := product.DiscountedPrice()
	if input.Variant != nil && input.Variant.Price != nil {
		unitPrice = *input.Variant.Price
	}

	item := models.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Variant:   input.Variant,
		UnitPrice: unitPrice,
	}
	cart.Items = append(cart.Items, item)
	return s.persistLine(ctx, cart, &cart.Items[len(cart.Items)-1])
}

// UpdateItemQuantity sets the line's quantity exactly. A quantity of zero or
// below removes the line; a missing line is treated as already removed.
func (s *service) UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return s.view(cart), nil
	}

	if quantity <= 0 {
		return s.removeLine(ctx, cart, idx)
	}

	cart.Items[idx].Quantity = quantity
	if err := s.persistLine(ctx, cart, &cart.Items[idx]); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// RemoveItem deletes the line if present; removing an absent line succeeds.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return s.removeLine(ctx, cart, i)
		}
	}
	return s.view(cart), nil
}

// Clear empties the items and drops the coupon in one transaction.
func (s *service) Clear(ctx context.Context, owner Owner) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
		}
		cart.Items = nil
		cart.Coupon = nil
		s.touch(cart)
		if err := txRepo.Update(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// ApplyCoupon resolves the code and attaches it to the cart. Unknown codes
// are ignored without error or mutation.
func (s *service) ApplyCoupon(ctx context.Context, owner Owner, code string) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot apply a coupon to an empty cart")
	}

	coupon := s.coupons.Resolve(code)
	if coupon == nil {
		return s.view(cart), nil
	}

	cart.Coupon = coupon
	if err := s.saveCart(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *service) RemoveCoupon(ctx context.Context, owner Owner) (*View, error) {
	return s.mutate(ctx, owner, func(cart *models.Cart) error {
		cart.Coupon = nil
		return nil
	})
}

func (s *service) SetShippingAddress(ctx context.Context, owner Owner, address types.Address) (*View, error) {
	normalized := address.Normalized()
	return s.mutate(ctx, owner, func(cart *models.Cart) error {
		cart.ShippingAddress = &normalized
		return nil
	})
}

func (s *service) SetShippingMethod(ctx context.Context, owner Owner, method types.ShippingMethod) (*View, error) {
	if method.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping price cannot be negative")
	}
	return s.mutate(ctx, owner, func(cart *models.Cart) error {
		cart.ShippingMethod = &method
		return nil
	})
}

func (s *service) SetPaymentMethod(ctx context.Context, owner Owner, method enums.PaymentMethod) (*View, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return s.mutate(ctx, owner, func(cart *models.Cart) error {
		cart.PaymentMethod = &method
		return nil
	})
}

func (s *service) SetNotes(ctx context.Context, owner Owner, notes string) (*View, error) {
	return s.mutate(ctx, owner, func(cart *models.Cart) error {
		if strings.TrimSpace(notes) == "" {
			cart.Notes = nil
			return nil
		}
		cart.Notes = &notes
		return nil
	})
}

// MergeGuestIntoUser replays every guest line into the user cart through the
// addItem path so identical (product, variant) lines combine, then discards
// the guest cart. Lines whose product has vanished or gone inactive are
// skipped rather than failing the whole merge.
func (s *service) MergeGuestIntoUser(ctx context.Context, guestToken string, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	userCart, err := s.findOrCreate(ctx, UserOwner(userID))
	if err != nil {
		return nil, err
	}

	guestCart, err := s.repo.FindByGuestToken(ctx, guestToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.view(userCart), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}

	for _, line := range guestCart.Items {
		addErr := s.addLine(ctx, userCart, AddItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Variant:   line.Variant,
		})
		if addErr != nil {
			if typed := pkgerrors.As(addErr); typed != nil {
				switch typed.Code() {
				case pkgerrors.CodeNotFound, pkgerrors.CodeUnavailable, pkgerrors.CodeInsufficientStock:
					continue
				}
			}
			return nil, addErr
		}
	}

	if err := s.repo.Delete(ctx, guestCart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete guest cart")
	}
	return s.view(userCart), nil
}

func (s *service) mutate(ctx context.Context, owner Owner, fn func(cart *models.Cart) error) (*View, error) {
	cart, err := s.findOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.saveCart(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *service) findOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	var (
		cart *models.Cart
		err  error
	)
	if owner.UserID != nil {
		cart, err = s.repo.FindByUser(ctx, *owner.UserID)
	} else {
		cart, err = s.repo.FindByGuestToken(ctx, *owner.GuestToken)
	}
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	fresh := &models.Cart{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
	}
	s.touch(fresh)

	created, err := s.repo.Create(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) removeLine(ctx context.Context, cart *models.Cart, idx int) (*View, error) {
	itemID := cart.Items[idx].ID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		s.touch(cart)
		if err := txRepo.Update(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *service) persistLine(ctx context.Context, cart *models.Cart, item *models.CartItem) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpsertItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		s.touch(cart)
		if err := txRepo.Update(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	})
}

func (s *service) saveCart(ctx context.Context, cart *models.Cart) error {
	s.touch(cart)
	if err := s.repo.Update(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// touch refreshes the guest expiry stamp on every write.
func (s *service) touch(cart *models.Cart) {
	if cart.GuestToken == nil {
		return
	}
	expiry := s.now().Add(s.guestTTL)
	cart.ExpiresAt = &expiry
}

func (s *service) view(cart *models.Cart) *View {
	return &View{Cart: cart, Summary: Summarize(cart)}
}
