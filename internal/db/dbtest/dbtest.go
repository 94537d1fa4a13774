// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(ctx, gdb))
	return gdb
}

// Product inserts a published product.
func Product(t testing.TB, gdb *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsPublished: true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Size(t testing.TB, gdb *gorm.DB, productID uint, size string, quantity int) *models.ProductSize {
	t.Helper()
	ps := &models.ProductSize{ProductID: productID, Size: size, Quantity: quantity}
	require.NoError(t, gdb.Create(ps).Error)
	return ps
}

func Image(t testing.TB, gdb *gorm.DB, productID uint, url string, main bool) *models.ProductImage {
	t.Helper()
	img := &models.ProductImage{ProductID: productID, ImageURL: url, IsMain: main}
	require.NoError(t, gdb.Create(img).Error)
	return img
}

func Reload[T any](t testing.TB, gdb *gorm.DB, id uint) *T {
	t.Helper()
	var v T
	require.NoError(t, gdb.First(&v, id).Error)
	return &v
}
