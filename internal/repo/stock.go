package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// FindProductSize returns the size row, or gorm.ErrRecordNotFound.
func (r *GormRepo) FindProductSize(ctx context.Context, productID uint, size string) (*models.ProductSize, error) {
	var ps models.ProductSize
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&ps).Error
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// LockProducts row-locks the products in ascending id order.
func (r *GormRepo) LockProducts(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.forUpdate(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

// LockSizes row-locks every size row of the given products in ascending id order.
func (r *GormRepo) LockSizes(ctx context.Context, productIDs []uint) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	if len(productIDs) == 0 {
		return sizes, nil
	}
	err := r.forUpdate(ctx).
		Where("product_id IN ?", productIDs).
		Order("id ASC").
		Find(&sizes).Error
	return sizes, err
}

// DecrementStock subtracts q only while enough stock remains. Zero rows
// affected means the guard failed.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, q int) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, q).
		Update("stock", gorm.Expr("stock - ?", q))
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DecrementSizeStock(ctx context.Context, productID uint, size string, q int) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.ProductSize{}).
		Where("product_id = ? AND size = ? AND quantity >= ?", productID, size, q).
		Update("quantity", gorm.Expr("quantity - ?", q))
	return res.RowsAffected, res.Error
}
