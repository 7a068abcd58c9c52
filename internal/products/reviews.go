package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	pkgerrors "github.com/greencartlabs/greencart-backend/pkg/errors"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
)

type reviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindReviewForUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviews(ctx context.Context, productID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error)
	RatingSummary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error)
	SetProductRating(ctx context.Context, productID uuid.UUID, rating decimal.Decimal, count int) error
}

// ReviewService exposes product review operations to the HTTP layer.
type ReviewService interface {
	Add(ctx context.Context, productID, userID uuid.UUID, input ReviewInput) (*models.Review, error)
	Update(ctx context.Context, reviewID uuid.UUID, actor ReviewActor, input ReviewInput) (*models.Review, error)
	Delete(ctx context.Context, reviewID uuid.UUID, actor ReviewActor) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, string, error)
}

// ReviewActor identifies who is editing a review. Admins may edit anyone's.
type ReviewActor struct {
	UserID uuid.UUID
	Admin  bool
}

// ReviewInput captures a review create or full replace.
type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

func (in ReviewInput) validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	title := strings.TrimSpace(in.Title)
	if len(title) < 3 || len(title) > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "title must be between 3 and 100 characters")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) < 10 || len(comment) > 1000 {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment must be between 10 and 1000 characters")
	}
	return nil
}

type reviewService struct {
	repo reviewRepository
}

// NewReviewService builds a review service backed by the provided repository.
func NewReviewService(repo reviewRepository) (ReviewService, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &reviewService{repo: repo}, nil
}

func (s *reviewService) Add(ctx context.Context, productID, userID uuid.UUID, input ReviewInput) (*models.Review, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if _, err := s.repo.FindReviewForUser(ctx, productID, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup review")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Comment:   strings.TrimSpace(input.Comment),
		Verified:  true,
	}
	created, err := s.repo.CreateReview(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	if err := s.refreshRating(ctx, productID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID uuid.UUID, actor ReviewActor, input ReviewInput) (*models.Review, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	review, err := s.loadReview(ctx, reviewID, actor)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Title = strings.TrimSpace(input.Title)
	review.Comment = strings.TrimSpace(input.Comment)

	updated, err := s.repo.UpdateReview(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	if err := s.refreshRating(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID uuid.UUID, actor ReviewActor) error {
	review, err := s.loadReview(ctx, reviewID, actor)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return s.refreshRating(ctx, review.ProductID)
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListReviews(ctx, productID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// loadReview fetches a review and enforces that only its author or an admin
// may touch it.
func (s *reviewService) loadReview(ctx context.Context, reviewID uuid.UUID, actor ReviewActor) (*models.Review, error) {
	review, err := s.repo.FindReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.UserID != actor.UserID && !actor.Admin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to modify this review")
	}
	return review, nil
}

// refreshRating recomputes the denormalized product rating. The average is
// rounded to one decimal place, matching the stored column precision.
func (s *reviewService) refreshRating(ctx context.Context, productID uuid.UUID) error {
	average, count, err := s.repo.RatingSummary(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize ratings")
	}
	if err := s.repo.SetProductRating(ctx, productID, average.Round(1), count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store product rating")
	}
	return nil
}
