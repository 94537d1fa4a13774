package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	Query       string
	CategoryIDs []uint
	BrandIDs    []uint
	// IncludeHidden lists unpublished products too.
	IncludeHidden bool
}

const listingSelect = `
p.id, p.name, p.description, p.price, p.stock, p.is_published,
p.category_id, p.brand_id, p.created_at,
COALESCE(c.name, '') AS category_name,
COALESCE(b.name, '') AS brand_name,
COALESCE(
	(SELECT pi.image_url FROM product_images pi WHERE pi.product_id = p.id AND pi.is_main = ? ORDER BY pi.sort_order LIMIT 1),
	(SELECT pi.image_url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.sort_order LIMIT 1),
	''
) AS main_image`

func (r *GormRepo) listingQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("products AS p").
		Select(listingSelect, true).
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Joins("LEFT JOIN brands b ON b.id = p.brand_id")
}

func applyFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if !f.IncludeHidden {
		q = q.Where("p.is_published = ?", true)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)", pattern, pattern)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("p.category_id IN ?", f.CategoryIDs)
	}
	if len(f.BrandIDs) > 0 {
		q = q.Where("p.brand_id IN ?", f.BrandIDs)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.ProductListing, error) {
	var total int64
	if err := applyFilter(r.DB.WithContext(ctx).Table("products AS p"), f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.ProductListing, 0, limit)
	if err := applyFilter(r.listingQuery(ctx), f).
		Order("p.created_at DESC, p.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProductListing(ctx context.Context, id uint) (*models.ProductListing, error) {
	var items []models.ProductListing
	if err := r.listingQuery(ctx).Where("p.id = ?", id).Limit(1).Scan(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &items[0], nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ProductImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_main DESC, sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *GormRepo) ProductSizes(ctx context.Context, productID uint) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("size ASC").
		Find(&sizes).Error
	return sizes, err
}

func (r *GormRepo) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB.WithContext(ctx).Where("is_published = ?", true).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) Brands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	err := r.DB.WithContext(ctx).Where("is_published = ?", true).Order("name ASC").Find(&out).Error
	return out, err
}
