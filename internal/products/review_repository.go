package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greencartlabs/greencart-backend/pkg/db/models"
	"github.com/greencartlabs/greencart-backend/pkg/pagination"
)

// CreateReview inserts a new review row.
func (r *Repository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindReviewByID loads a single review row.
func (r *Repository) FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindReviewForUser loads the user's review of a product, if any.
func (r *Repository) FindReviewForUser(ctx context.Context, productID, userID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		First(&review, "product_id = ? AND user_id = ?", productID, userID).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview saves the full review row.
func (r *Repository) UpdateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the review row.
func (r *Repository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

// ListReviews pages through a product's reviews newest-first using a cursor.
func (r *Repository) ListReviews(ctx context.Context, productID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingSummary returns the average rating and review count for a product.
// A product with no reviews averages to zero.
func (r *Repository) RatingSummary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error) {
	var row struct {
		Average decimal.Decimal
		Count   int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Average, row.Count, nil
}

// SetProductRating writes the denormalized rating columns on the product.
func (r *Repository) SetProductRating(ctx context.Context, productID uuid.UUID, rating decimal.Decimal, count int) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE products SET rating = ?, review_count = ?, updated_at = NOW() WHERE id = ?`,
		rating, count, productID,
	).Error
}
