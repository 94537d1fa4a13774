package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductListing is a product joined with its category, brand and main image.
type ProductListing struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	IsPublished  bool            `json:"is_published"`
	CategoryID   *uint           `json:"category_id,omitempty"`
	BrandID      *uint           `json:"brand_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	BrandName    string          `json:"brand_name,omitempty"`
	MainImage    string          `json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CartLine is a cart item joined with live product data.
type CartLine struct {
	CartItemID   uint            `json:"cart_item_id"`
	ProductID    uint            `json:"product_id"`
	Size         string          `json:"size,omitempty"`
	Quantity     int             `json:"quantity"`
	AddedAt      time.Time       `json:"added_at"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	IsPublished  bool            `json:"is_published"`
	CategoryName string          `json:"category_name,omitempty"`
	BrandName    string          `json:"brand_name,omitempty"`
	MainImage    string          `json:"image"`
	InStock      bool            `json:"in_stock" gorm:"-"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
