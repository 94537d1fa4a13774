package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusProcessing = "processing"
	PaymentStatusPending  = "pending"
)

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"unique;not null"           json:"name"`
	Slug        string    `gorm:"unique;not null"           json:"slug"`
	Description string    `json:"description,omitempty"`
	IsPublished bool      `gorm:"not null"                  json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Brand struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"unique;not null"           json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublished bool      `gorm:"not null"                  json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string          `gorm:"not null"                     json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"  json:"price"`
	Stock       int             `gorm:"not null;default:0"           json:"stock"`
	IsPublished bool            `gorm:"not null"                     json:"is_published"`
	CategoryID  *uint           `gorm:"index"                        json:"category_id,omitempty"`
	BrandID     *uint           `gorm:"index"                        json:"brand_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductSize is the per-size stock breakdown of a product.
type ProductSize struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                     json:"id"`
	ProductID uint   `gorm:"uniqueIndex:idx_product_size;not null"        json:"product_id"`
	Size      string `gorm:"uniqueIndex:idx_product_size;not null"        json:"size"`
	Quantity  int    `gorm:"not null;default:0"                           json:"quantity"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	ProductID uint   `gorm:"index;not null"            json:"product_id"`
	ImageURL  string `gorm:"not null"                  json:"image_url"`
	IsMain    bool   `gorm:"default:false"             json:"is_main"`
	SortOrder int    `gorm:"default:0"                 json:"sort_order"`
}

// CartItem is one cart line. Size is "" when the product is not sized, so the
// unique key also covers unsized lines.
type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_product_size;not null"           json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product_size;not null"           json:"product_id"`
	Size      string    `gorm:"uniqueIndex:idx_cart_user_product_size;not null;default:''" json:"size,omitempty"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"                       json:"quantity"`
	AddedAt   time.Time `gorm:"not null"                                                  json:"added_at"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID          uint            `gorm:"index;not null"               json:"user_id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"         json:"order_number"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"total_amount"`
	Status          string          `gorm:"not null"                     json:"status"`
	PaymentStatus   string          `gorm:"not null"                     json:"payment_status"`
	PaymentMethod   string          `gorm:"not null"                     json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	Notes           string          `json:"notes,omitempty"`
	ContactName     string          `json:"contact_name,omitempty"`
	ContactPhone    string          `json:"contact_phone,omitempty"`
	ContactEmail    string          `json:"contact_email,omitempty"`
	CreatedAt       time.Time       `gorm:"not null"                     json:"created_at"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"           json:"items,omitempty"`
}

// OrderItem freezes the unit price and product name at checkout time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID     uint            `gorm:"index;not null"               json:"order_id"`
	ProductID   uint            `gorm:"not null"                     json:"product_id"`
	ProductName string          `gorm:"not null"                     json:"product_name"`
	Size        string          `gorm:"not null;default:''"          json:"size,omitempty"`
	Quantity    int             `gorm:"not null;check:quantity>0"    json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"  json:"unit_price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	ProductID uint      `gorm:"uniqueIndex:idx_review_product_author;not null" json:"product_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_product_author;not null" json:"user_id"`
	Rating    int       `gorm:"not null;default:5"                             json:"rating"`
	Comment   string    `gorm:"type:text;not null"                             json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{
		&Category{},
		&Brand{},
		&Product{},
		&ProductSize{},
		&ProductImage{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Review{},
	}
}
