package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
)

type storedRating struct {
	rating decimal.Decimal
	count  int
}

type stubReviewRepo struct {
	products map[uuid.UUID]*models.Product
	reviews  map[uuid.UUID]*models.Review
	ratings  map[uuid.UUID]storedRating
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{
		products: map[uuid.UUID]*models.Product{},
		reviews:  map[uuid.UUID]*models.Review{},
		ratings:  map[uuid.UUID]storedRating{},
	}
}

func (s *stubReviewRepo) addProduct() *models.Product {
	p := &models.Product{ID: uuid.New(), Name: "Bananas", Price: decimal.NewFromInt(1)}
	s.products[p.ID] = p
	return p
}

func (s *stubReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewRepo) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.ID = uuid.New()
	s.reviews[review.ID] = review
	return review, nil
}

func (s *stubReviewRepo) FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	if r, ok := s.reviews[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewRepo) FindReviewForUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	for _, r := range s.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReviewRepo) UpdateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	s.reviews[review.ID] = review
	return review, nil
}

func (s *stubReviewRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	delete(s.reviews, id)
	return nil
}

func (s *stubReviewRepo) ListReviews(ctx context.Context, productID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error) {
	var rows []models.Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			rows = append(rows, *r)
		}
	}
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *stubReviewRepo) RatingSummary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error) {
	sum := decimal.Zero
	count := 0
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, 0, nil
	}
	return sum.Div(decimal.NewFromInt(int64(count))), count, nil
}

func (s *stubReviewRepo) SetProductRating(ctx context.Context, productID uuid.UUID, rating decimal.Decimal, count int) error {
	s.ratings[productID] = storedRating{rating: rating, count: count}
	return nil
}

func newTestReviewService(t *testing.T, repo reviewRepository) ReviewService {
	t.Helper()
	svc, err := NewReviewService(repo)
	if err != nil {
		t.Fatalf("NewReviewService returned error: %v", err)
	}
	return svc
}

func validReview() ReviewInput {
	return ReviewInput{Rating: 5, Title: "Great bananas", Comment: "Perfectly ripe and sweet."}
}

func TestReviewAdd_MarksVerifiedAndStoresRating(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	created, err := svc.Add(context.Background(), p.ID, uuid.New(), validReview())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Verified {
		t.Fatal("expected review to be marked verified")
	}
	stored := repo.ratings[p.ID]
	if stored.count != 1 || !stored.rating.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected rating 5 with count 1, got %+v", stored)
	}
}

func TestReviewAdd_SecondReviewBySameUserConflicts(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	userID := uuid.New()
	if _, err := svc.Add(context.Background(), p.ID, userID, validReview()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Add(context.Background(), p.ID, userID, validReview())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReviewAdd_UnknownProductNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestReviewService(t, newStubReviewRepo())

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New(), validReview())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReviewAdd_Validation(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	cases := []ReviewInput{
		{Rating: 0, Title: "Great bananas", Comment: "Perfectly ripe and sweet."},
		{Rating: 6, Title: "Great bananas", Comment: "Perfectly ripe and sweet."},
		{Rating: 4, Title: "ok", Comment: "Perfectly ripe and sweet."},
		{Rating: 4, Title: "Great bananas", Comment: "too short"},
	}
	for i, input := range cases {
		_, err := svc.Add(context.Background(), p.ID, uuid.New(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestReviewUpdate_OwnerOnlyUnlessAdmin(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	owner := uuid.New()
	created, err := svc.Add(context.Background(), p.ID, owner, validReview())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := validReview()
	input.Rating = 3

	_, err = svc.Update(context.Background(), created.ID, ReviewActor{UserID: uuid.New()}, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for a stranger, got %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, ReviewActor{UserID: uuid.New(), Admin: true}, input)
	if err != nil {
		t.Fatalf("expected admin update to succeed: %v", err)
	}
	if updated.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Rating)
	}
}

func TestReviewLifecycle_AverageRoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	ratings := []int{4, 4, 5}
	for _, rating := range ratings {
		input := validReview()
		input.Rating = rating
		if _, err := svc.Add(context.Background(), p.ID, uuid.New(), input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stored := repo.ratings[p.ID]
	if stored.count != 3 {
		t.Fatalf("expected three reviews, got %d", stored.count)
	}
	if !stored.rating.Equal(decimal.RequireFromString("4.3")) {
		t.Fatalf("expected average 4.3, got %s", stored.rating)
	}
}

func TestReviewDelete_RecomputesRating(t *testing.T) {
	t.Parallel()

	repo := newStubReviewRepo()
	p := repo.addProduct()
	svc := newTestReviewService(t, repo)

	owner := uuid.New()
	created, err := svc.Add(context.Background(), p.ID, owner, validReview())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, ReviewActor{UserID: owner}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.ratings[p.ID]
	if stored.count != 0 || !stored.rating.IsZero() {
		t.Fatalf("expected rating reset after delete, got %+v", stored)
	}
}
