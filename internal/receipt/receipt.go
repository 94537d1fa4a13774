package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	DateLayout = "02.01.2006 15:04:05"
	rule       = "=================================="
	thinRule   = "----------------------------------"
)

type Line struct {
	Name      string
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Document is everything printed on a receipt.
type Document struct {
	StoreName     string
	OrderNumber   string
	CreatedAt     time.Time
	CustomerName  string
	Phone         string
	Email         string
	Address       string
	PaymentMethod string
	Lines         []Line
	Total         decimal.Decimal
}

// FromOrder builds the document from a persisted order and its items.
func FromOrder(storeName string, o *models.Order) Document {
	lines := make([]Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, Line{
			Name:      it.ProductName,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return Document{
		StoreName:     storeName,
		OrderNumber:   o.OrderNumber,
		CreatedAt:     o.CreatedAt,
		CustomerName:  o.ContactName,
		Phone:         o.ContactPhone,
		Email:         o.ContactEmail,
		Address:       o.ShippingAddress,
		PaymentMethod: o.PaymentMethod,
		Lines:         lines,
		Total:         o.TotalAmount,
	}
}

func centered(s string) string {
	pad := (len(rule) - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func Render(d Document) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString(centered(d.StoreName) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(centered("SALES RECEIPT") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Date: %s\n", d.CreatedAt.Format(DateLayout))
	fmt.Fprintf(&b, "Order number: %s\n", d.OrderNumber)
	b.WriteString(thinRule + "\n")
	b.WriteString("CUSTOMER:\n")
	fmt.Fprintf(&b, "Name: %s\n", d.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", d.Phone)
	fmt.Fprintf(&b, "Email: %s\n", d.Email)
	fmt.Fprintf(&b, "Address: %s\n", d.Address)
	fmt.Fprintf(&b, "Payment: %s\n", d.PaymentMethod)
	b.WriteString(thinRule + "\n")
	b.WriteString("ITEMS:\n")

	for _, l := range d.Lines {
		fmt.Fprintf(&b, "\n• %s", l.Name)
		if l.Size != "" {
			fmt.Fprintf(&b, " (Size: %s)", l.Size)
		}
		fmt.Fprintf(&b, "\n  %d pcs × %s = %s", l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}

	b.WriteString("\n" + thinRule + "\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", d.Total.StringFixed(2))
	b.WriteString(rule + "\n")
	b.WriteString("Thank you for your purchase!\n")
	b.WriteString(rule + "\n")

	return b.String()
}
