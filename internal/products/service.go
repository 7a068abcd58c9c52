package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
	"github.com/greencartlabs/greencart-backend/pkg/types"
)

type catalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Service exposes catalog operations to the HTTP layer.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, string, error)
}

type service struct {
	repo       catalogRepository
	categories categoryFinder
}

// NewService builds a catalog service backed by the provided repositories.
func NewService(repo catalogRepository, categories categoryFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo, categories: categories}, nil
}

// CreateInput captures the payload for a new catalog listing.
type CreateInput struct {
	Name          string
	Description   *string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Price         decimal.Decimal
	Discount      decimal.Decimal
	Variants      types.Variants
	Stock         int
	Status        enums.ProductStatus
	Images        []string
}

// UpdateInput mirrors CreateInput; every field is replaced on update.
type UpdateInput = CreateInput

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	if in.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if in.Status != "" && !in.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	for _, variant := range in.Variants {
		if variant.Name == "" || variant.Val == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant name and value are required")
		}
		if variant.Price != nil && variant.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = enums.ProductStatusActive
	}

	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Price:         input.Price,
		Discount:      input.Discount,
		Variants:      input.Variants,
		Stock:         input.Stock,
		Status:        status,
		Images:        pq.StringArray(input.Images),
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, input); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.CategoryID = input.CategoryID
	product.SubcategoryID = input.SubcategoryID
	product.Price = input.Price
	product.Discount = input.Discount
	product.Variants = input.Variants
	product.Stock = input.Stock
	if input.Status != "" {
		product.Status = input.Status
	}
	product.Images = pq.StringArray(input.Images)

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.loadProduct(ctx, id)
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "min price cannot exceed max price")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, filters, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *service) checkCategories(ctx context.Context, input CreateInput) error {
	if err := s.checkCategory(ctx, input.CategoryID, "category"); err != nil {
		return err
	}
	return s.checkCategory(ctx, input.SubcategoryID, "subcategory")
}

func (s *service) checkCategory(ctx context.Context, id *uuid.UUID, field string) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" not found").
				WithDetails(map[string]any{"field": field})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+field)
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
