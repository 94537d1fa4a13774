package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	var total int64
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// GetOrder loads the user's order with its items.
func (r *GormRepo) GetOrder(ctx context.Context, userID uint, number string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("order_number = ? AND user_id = ?", number, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber ignores ownership; it backs operator tooling.
func (r *GormRepo) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) AllOrderNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Order("id ASC").
		Pluck("order_number", &numbers).Error
	return numbers, err
}
