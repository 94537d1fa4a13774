package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ReviewExists(ctx context.Context, productID, userID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateReview(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *GormRepo) UpdateReview(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).
		Model(review).
		Select("rating", "comment", "updated_at").
		Updates(review).Error
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ReviewsForProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}
