package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/enums"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	byID        map[uuid.UUID]*models.Product
	created     []*models.Product
	updated     []*models.Product
	deleted     []uuid.UUID
	listed      []models.Product
	lastFilters ListFilters
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = uuid.New()
	s.created = append(s.created, p)
	return p, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.updated = append(s.updated, p)
	return p, nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCatalogRepo) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	s.lastFilters = filters
	if limit > len(s.listed) {
		limit = len(s.listed)
	}
	return s.listed[:limit], nil
}

type stubCategoryFinder struct {
	byID map[uuid.UUID]*models.Category
}

func (s *stubCategoryFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo catalogRepository) Service {
	t.Helper()
	return newTestServiceWithCategories(t, repo, &stubCategoryFinder{})
}

func newTestServiceWithCategories(t *testing.T, repo catalogRepository, categories categoryFinder) Service {
	t.Helper()
	svc, err := NewService(repo, categories)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestServiceCreate_DefaultsToActive(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Bananas",
		Price: decimal.RequireFromString("1.29"),
		Stock: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != enums.ProductStatusActive {
		t.Fatalf("expected active default, got %s", created.Status)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create, got %d", len(repo.created))
	}
}

func TestServiceCreate_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{})

	cases := []CreateInput{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "Milk", Price: decimal.NewFromInt(-1)},
		{Name: "Milk", Price: decimal.NewFromInt(1), Discount: decimal.NewFromInt(120)},
		{Name: "Milk", Price: decimal.NewFromInt(1), Stock: -1},
		{Name: "Milk", Price: decimal.NewFromInt(1), Status: enums.ProductStatus("archived")},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestServiceGet_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceUpdate_ReplacesFields(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	existing := &models.Product{
		ID:     id,
		Name:   "Old Name",
		Price:  decimal.NewFromInt(2),
		Status: enums.ProductStatusActive,
	}
	repo := &stubCatalogRepo{byID: map[uuid.UUID]*models.Product{id: existing}}
	svc := newTestService(t, repo)

	updated, err := svc.Update(context.Background(), id, UpdateInput{
		Name:     "New Name",
		Price:    decimal.RequireFromString("3.50"),
		Discount: decimal.NewFromInt(10),
		Stock:    7,
		Status:   enums.ProductStatusInactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New Name" || updated.Status != enums.ProductStatusInactive {
		t.Fatalf("fields not replaced: %+v", updated)
	}
	if updated.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", updated.Stock)
	}
}

func TestServiceList_EmitsNextCursorWhenMoreRows(t *testing.T) {
	t.Parallel()

	rows := make([]models.Product, pagination.DefaultLimit+1)
	for i := range rows {
		rows[i] = models.Product{ID: uuid.New(), Name: "P"}
	}
	repo := &stubCatalogRepo{listed: rows}
	svc := newTestService(t, repo)

	page, next, err := svc.List(context.Background(), ListFilters{}, pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != pagination.DefaultLimit {
		t.Fatalf("expected %d rows, got %d", pagination.DefaultLimit, len(page))
	}
	if next == "" {
		t.Fatal("expected next cursor")
	}
}

func TestServiceCreate_UnknownCategoryRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{})

	categoryID := uuid.New()
	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "Bananas",
		Price:      decimal.RequireFromString("1.29"),
		CategoryID: &categoryID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreate_AssociatesCategory(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	finder := &stubCategoryFinder{byID: map[uuid.UUID]*models.Category{
		categoryID: {ID: categoryID, Name: "Produce", Slug: "produce"},
	}}
	repo := &stubCatalogRepo{}
	svc := newTestServiceWithCategories(t, repo, finder)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:       "Bananas",
		Price:      decimal.RequireFromString("1.29"),
		CategoryID: &categoryID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CategoryID == nil || *created.CategoryID != categoryID {
		t.Fatalf("expected category %s on product, got %v", categoryID, created.CategoryID)
	}
}

func TestServiceList_PassesFiltersThrough(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc := newTestService(t, repo)

	categoryID := uuid.New()
	minPrice := decimal.NewFromInt(1)
	maxPrice := decimal.NewFromInt(10)
	filters := ListFilters{CategoryID: &categoryID, MinPrice: &minPrice, MaxPrice: &maxPrice}

	if _, _, err := svc.List(context.Background(), filters, pagination.Params{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilters.CategoryID == nil || *repo.lastFilters.CategoryID != categoryID {
		t.Fatalf("expected category filter to reach the repository, got %+v", repo.lastFilters)
	}
	if repo.lastFilters.MinPrice == nil || repo.lastFilters.MaxPrice == nil {
		t.Fatalf("expected price bounds to reach the repository, got %+v", repo.lastFilters)
	}
}

func TestServiceList_RejectsInvertedPriceBounds(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{})

	minPrice := decimal.NewFromInt(10)
	maxPrice := decimal.NewFromInt(1)
	_, _, err := svc.List(context.Background(), ListFilters{MinPrice: &minPrice, MaxPrice: &maxPrice}, pagination.Params{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
