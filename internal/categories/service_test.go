package category

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
)

type stubCategoryRepo struct {
	byID    map[uuid.UUID]*models.Category
	bySlug  map[string]*models.Category
	created []*models.Category
	updated []*models.Category
	deleted []uuid.UUID
	listed  []models.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		byID:   map[uuid.UUID]*models.Category{},
		bySlug: map[string]*models.Category{},
	}
}

func (s *stubCategoryRepo) add(row *models.Category) *models.Category {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.byID[row.ID] = row
	s.bySlug[row.Slug] = row
	return row
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if row, ok := s.bySlug[slug]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) Create(ctx context.Context, row *models.Category) (*models.Category, error) {
	s.created = append(s.created, row)
	return s.add(row), nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, row *models.Category) (*models.Category, error) {
	s.updated = append(s.updated, row)
	return s.add(row), nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	return s.listed, nil
}

func (s *stubCategoryRepo) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, row := range s.byID {
		if row.ParentID != nil && *row.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func newTestCategoryService(t *testing.T, repo categoryRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Fresh Produce":       "fresh-produce",
		"Dairy & Eggs":        "dairy-eggs",
		"  Frozen  Foods  ":   "frozen-foods",
		"Snacks, Chips & Dip": "snacks-chips-dip",
	}
	for name, want := range cases {
		if got := Slugify(name); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCategoryCreate_DerivesSlugAndDefaultsActive(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := newTestCategoryService(t, repo)

	created, err := svc.Create(context.Background(), Input{Name: "Dairy & Eggs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Slug != "dairy-eggs" {
		t.Fatalf("expected derived slug, got %q", created.Slug)
	}
	if !created.IsActive {
		t.Fatal("expected new category to default to active")
	}
}

func TestCategoryCreate_DuplicateSlugConflicts(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	repo.add(&models.Category{Name: "Dairy", Slug: "dairy"})
	svc := newTestCategoryService(t, repo)

	_, err := svc.Create(context.Background(), Input{Name: "Dairy"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCategoryCreate_MissingParentRejected(t *testing.T) {
	t.Parallel()

	svc := newTestCategoryService(t, newStubCategoryRepo())

	parent := uuid.New()
	_, err := svc.Create(context.Background(), Input{Name: "Cheese", ParentID: &parent})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCategoryUpdate_KeepingOwnSlugIsNotAConflict(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	row := repo.add(&models.Category{Name: "Dairy", Slug: "dairy", IsActive: true})
	svc := newTestCategoryService(t, repo)

	updated, err := svc.Update(context.Background(), row.ID, Input{Name: "Dairy", SortOrder: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.SortOrder != 3 {
		t.Fatalf("expected sort order 3, got %d", updated.SortOrder)
	}
}

func TestCategoryDelete_BlockedWhileSubcategoriesExist(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	parent := repo.add(&models.Category{Name: "Produce", Slug: "produce"})
	repo.add(&models.Category{Name: "Fruit", Slug: "fruit", ParentID: &parent.ID})
	svc := newTestCategoryService(t, repo)

	err := svc.Delete(context.Background(), parent.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("expected no delete to reach the repository")
	}
}

func TestCategoryTree_NestsChildrenUnderParents(t *testing.T) {
	t.Parallel()

	produce := models.Category{ID: uuid.New(), Name: "Produce", Slug: "produce", IsActive: true}
	fruit := models.Category{ID: uuid.New(), Name: "Fruit", Slug: "fruit", ParentID: &produce.ID, IsActive: true}
	orphan := models.Category{ID: uuid.New(), Name: "Bakery", Slug: "bakery", IsActive: true}

	repo := newStubCategoryRepo()
	repo.listed = []models.Category{produce, fruit, orphan}
	svc := newTestCategoryService(t, repo)

	tree, err := svc.Tree(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected two roots, got %d", len(tree))
	}
	if tree[0].ID != produce.ID || len(tree[0].Children) != 1 {
		t.Fatalf("expected produce with one child, got %+v", tree[0])
	}
	if tree[0].Children[0].ID != fruit.ID {
		t.Fatalf("expected fruit nested under produce")
	}
}
