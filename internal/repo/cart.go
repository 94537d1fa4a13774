package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

const cartLineSelect = `
ci.id AS cart_item_id, ci.product_id, ci.size, ci.quantity, ci.added_at,
p.name, p.description, p.price, p.stock, p.is_published,
COALESCE(c.name, '') AS category_name,
COALESCE(b.name, '') AS brand_name,
COALESCE(
	(SELECT pi.image_url FROM product_images pi WHERE pi.product_id = p.id AND pi.is_main = ? ORDER BY pi.sort_order LIMIT 1),
	(SELECT pi.image_url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.sort_order LIMIT 1),
	''
) AS main_image`

// CartLines returns the user's cart joined with live product data, newest first.
func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0)
	err := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select(cartLineSelect, true).
		Joins("JOIN products p ON p.id = ci.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Joins("LEFT JOIN brands b ON b.id = p.brand_id").
		Where("ci.user_id = ?", userID).
		Order("ci.added_at DESC, ci.id DESC").
		Scan(&lines).Error
	return lines, err
}

func (r *GormRepo) CartCount(ctx context.Context, userID uint) (int, error) {
	var total int64
	err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

// FindCartLine locks the user's line for (product, size) if one exists.
func (r *GormRepo) FindCartLine(ctx context.Context, userID, productID uint, size string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.forUpdate(ctx).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartLine loads a line by id; lines of other users are reported as missing.
func (r *GormRepo) GetCartLine(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.forUpdate(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SetCartLineQuantity(ctx context.Context, userID, itemID uint, quantity int) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteCartLine(ctx context.Context, userID, itemID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// LockCart reads and row-locks every line of the user's cart in id order.
func (r *GormRepo) LockCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.forUpdate(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ProductName is a cheap lookup used for user-facing messages.
func (r *GormRepo) ProductName(ctx context.Context, productID uint) (string, error) {
	var names []string
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Limit(1).
		Pluck("name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return names[0], nil
}
