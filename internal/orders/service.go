package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/internal/cart"
	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

const (
	noteOrderPlaced     = "Order placed"
	noteDelivered       = "Order delivered successfully"
	noteDefaultCancel   = "Order cancelled by customer"
	trackingNotePrefix  = "Tracking number: "
	refundNoteTemplate  = "Refund processed: $%s - %s"
	cancelDisallowedMsg = "order cannot be cancelled in its current status"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// inventory adjusts product stock inside an open transaction. Decrement is
// conditional: it succeeds only when enough stock remains at write time.
type inventory interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
	Increment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service exposes order lifecycle operations to the HTTP layer.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	GetAny(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, params pagination.Params) ([]models.Order, string, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusInput) (*models.Order, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID, reason string) (*models.Order, error)
	AddTracking(ctx context.Context, orderID uuid.UUID, input TrackingInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID, updatedBy *uuid.UUID) (*models.Order, error)
	ProcessRefund(ctx context.Context, orderID uuid.UUID, input RefundInput) (*models.Order, error)
	Tracking(ctx context.Context, orderID, userID uuid.UUID) (*TrackingView, error)
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

type service struct {
	repo     OrderRepository
	carts    cart.CartRepository
	products productLoader
	stock    inventory
	tx       txRunner
	now      func() time.Time
}

// NewService wires the order service. All dependencies are required.
func NewService(repo OrderRepository, carts cart.CartRepository, products productLoader, stock inventory, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		stock:    stock,
		tx:       tx,
		now:      time.Now,
	}, nil
}

// CreateInput carries the checkout payload. Fields left nil fall back to the
// cart's own selections.
type CreateInput struct {
	ShippingAddress *types.Address
	BillingAddress  *types.Address
	ShippingMethod  *types.ShippingMethod
	PaymentMethod   *enums.PaymentMethod
	Notes           *string
	Source          enums.OrderSource
	IPAddress       *string
	UserAgent       *string
}

// StatusInput carries an explicit status transition.
type StatusInput struct {
	Status    enums.OrderStatus
	Note      *string
	UpdatedBy *uuid.UUID
}

// TrackingInput attaches carrier tracking to an order.
type TrackingInput struct {
	TrackingNumber string
	Carrier        *string
	EstimatedDays  *int
	UpdatedBy      *uuid.UUID
}

// RefundInput records a processed refund.
type RefundInput struct {
	Amount    decimal.Decimal
	Reason    string
	UpdatedBy *uuid.UUID
}

// TrackingView is the customer-facing shipment summary.
type TrackingView struct {
	OrderNumber       string                    `json:"order_number"`
	Status            enums.OrderStatus         `json:"status"`
	ShippingMethod    *types.ShippingMethod     `json:"shipping_method,omitempty"`
	StatusHistory     []models.OrderStatusEntry `json:"status_history"`
	EstimatedDelivery *time.Time                `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time                `json:"actual_delivery,omitempty"`
}

// Create snapshots the user's cart into an order. The order row, its items,
// the opening status entry, the stock decrements and the cart wipe all commit
// in one transaction, so a failed checkout leaves nothing behind.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error) {
	basket, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(basket.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	shippingAddress := input.ShippingAddress
	if shippingAddress == nil {
		shippingAddress = basket.ShippingAddress
	}
	if shippingAddress == nil || shippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	normalized := shippingAddress.Normalized()

	billing := normalized
	if input.BillingAddress != nil && !input.BillingAddress.IsZero() {
		billing = input.BillingAddress.Normalized()
	}

	method := input.PaymentMethod
	if method == nil {
		method = basket.PaymentMethod
	}
	if method == nil || !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	items, err := s.snapshotItems(ctx, basket)
	if err != nil {
		return nil, err
	}

	priced := *basket
	if input.ShippingMethod != nil {
		priced.ShippingMethod = input.ShippingMethod
	}
	summary := cart.Summarize(&priced)

	notes := input.Notes
	if notes == nil {
		notes = basket.Notes
	}
	source := input.Source
	if source == "" {
		source = enums.OrderSourceWeb
	}

	now := s.now()
	order := &models.Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        summary.Subtotal,
		ShippingCost:    summary.ShippingCost,
		Discount:        summary.DiscountAmount,
		Coupon:          basket.Coupon,
		Total:           summary.Total,
		Status:          enums.OrderStatusPending,
		ShippingAddress: normalized,
		BillingAddress:  billing,
		ShippingMethod:  priced.ShippingMethod,
		Payment: types.Payment{
			Method: *method,
			Status: enums.PaymentStatusPending,
		},
		Notes:     notes,
		Source:    source,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	}

	placedNote := noteOrderPlaced
	order.StatusHistory = []models.OrderStatusEntry{{
		Status:    enums.OrderStatusPending,
		Timestamp: now,
		Note:      &placedNote,
	}}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txCarts := s.carts.WithTx(tx)

		dayStart, dayEnd := DayRange(now)
		placedToday, err := txOrders.CountCreatedBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders for numbering")
		}
		order.OrderNumber = FormatNumber(now, int(placedToday)+1)

		if err := txOrders.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, item := range order.Items {
			ok, err := s.stock.Decrement(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %s", item.Name)).
					WithDetails(map[string]any{"product": item.Name})
			}
		}

		if err := txCarts.DeleteItems(ctx, basket.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
		}
		basket.Coupon = nil
		basket.Notes = nil
		if err := txCarts.Update(ctx, basket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// snapshotItems freezes the cart lines, validating live availability and
// stock first so checkout fails before any side effects.
func (s *service) snapshotItems(ctx context.Context, basket *models.Cart) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(basket.Items))
	for _, line := range basket.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "a cart item is no longer available")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.Status != enums.ProductStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeUnavailable,
				fmt.Sprintf("%s is not available", product.Name)).
				WithDetails(map[string]any{"product": product.Name})
		}
		if product.Stock < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(map[string]any{"product": product.Name, "available": product.Stock})
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Variant:   line.Variant,
			Image:     product.FirstImage(),
		})
	}
	return items, nil
}

// Get loads an order scoped to its owner. A foreign order id reads as absent
// rather than forbidden, so ids cannot be probed.
func (s *service) Get(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// GetAny loads an order without an ownership check, for admin callers.
func (s *service) GetAny(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, status, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	rows, next := trimPage(rows, limit)
	return rows, next, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, filters, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	rows, next := trimPage(rows, limit)
	return rows, next, nil
}

func trimPage(rows []models.Order, limit int) ([]models.Order, string) {
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}

// UpdateStatus applies any transition without guarding it. Operational flows
// are messy in practice, so only cancellation is restricted.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.GetAny(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = input.Status
	return order, s.persistTransition(ctx, order, input.Status, input.Note, input.UpdatedBy)
}

// Cancel refuses orders already shipped or finished, restores stock for every
// line and records the customer's reason.
func (s *service) Cancel(ctx context.Context, orderID, userID uuid.UUID, reason string) (*models.Order, error) {
	order, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, cancelDisallowedMsg).
			WithDetails(map[string]any{"status": order.Status})
	}

	note := strings.TrimSpace(reason)
	if note == "" {
		note = noteDefaultCancel
	}

	order.Status = enums.OrderStatusCancelled
	entry := s.newEntry(order.ID, enums.OrderStatusCancelled, &note, &userID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		if err := txOrders.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		if err := txOrders.AppendStatusEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status entry")
		}
		for _, item := range order.Items {
			if err := s.stock.Increment(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.StatusHistory = append(order.StatusHistory, *entry)
	return order, nil
}

// AddTracking attaches a tracking number and moves the order to shipped.
func (s *service) AddTracking(ctx context.Context, orderID uuid.UUID, input TrackingInput) (*models.Order, error) {
	tracking := strings.TrimSpace(input.TrackingNumber)
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}

	order, err := s.GetAny(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method := order.ShippingMethod
	if method == nil {
		method = &types.ShippingMethod{}
	}
	method.TrackingNumber = tracking
	if input.Carrier != nil {
		method.Carrier = *input.Carrier
	}
	order.ShippingMethod = method
	if input.EstimatedDays != nil {
		estimated := s.now().AddDate(0, 0, *input.EstimatedDays)
		order.EstimatedDelivery = &estimated
	}
	order.Status = enums.OrderStatusShipped

	note := trackingNotePrefix + tracking
	return order, s.persistTransition(ctx, order, enums.OrderStatusShipped, &note, input.UpdatedBy)
}

// MarkDelivered stamps the actual delivery time and closes out shipping.
func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID, updatedBy *uuid.UUID) (*models.Order, error) {
	order, err := s.GetAny(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order.Status = enums.OrderStatusDelivered
	order.ActualDelivery = &now

	note := noteDelivered
	return order, s.persistTransition(ctx, order, enums.OrderStatusDelivered, &note, updatedBy)
}

// ProcessRefund records a refund amount and reason. Money never moves here;
// the payment snapshot is bookkeeping only.
func (s *service) ProcessRefund(ctx context.Context, orderID uuid.UUID, input RefundInput) (*models.Order, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund reason is required")
	}

	order, err := s.GetAny(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if input.Amount.GreaterThan(order.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds order total")
	}

	order.Status = enums.OrderStatusRefunded
	order.Payment.Status = enums.PaymentStatusRefunded

	note := fmt.Sprintf(refundNoteTemplate, input.Amount.StringFixed(2), strings.TrimSpace(input.Reason))
	return order, s.persistTransition(ctx, order, enums.OrderStatusRefunded, &note, input.UpdatedBy)
}

// Tracking builds the customer-facing shipment view.
func (s *service) Tracking(ctx context.Context, orderID, userID uuid.UUID) (*TrackingView, error) {
	order, err := s.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return &TrackingView{
		OrderNumber:       order.OrderNumber,
		Status:            order.Status,
		ShippingMethod:    order.ShippingMethod,
		StatusHistory:     order.StatusHistory,
		EstimatedDelivery: order.EstimatedDelivery,
		ActualDelivery:    order.ActualDelivery,
	}, nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate orders")
	}
	return stats, nil
}

// persistTransition saves the order and appends the matching history entry in
// one transaction, then reflects the new entry on the in-memory order.
func (s *service) persistTransition(ctx context.Context, order *models.Order, status enums.OrderStatus, note *string, updatedBy *uuid.UUID) error {
	entry := s.newEntry(order.ID, status, note, updatedBy)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		if err := txOrders.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		if err := txOrders.AppendStatusEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status entry")
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.StatusHistory = append(order.StatusHistory, *entry)
	return nil
}

func (s *service) newEntry(orderID uuid.UUID, status enums.OrderStatus, note *string, updatedBy *uuid.UUID) *models.OrderStatusEntry {
	return &models.OrderStatusEntry{
		OrderID:   orderID,
		Status:    status,
		Timestamp: s.now(),
		Note:      note,
		UpdatedBy: updatedBy,
	}
}
