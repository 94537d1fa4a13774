package service

import (
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/receipt"
)

const receiptURLPrefix = "/api/v1/orders/"

func ReceiptURL(orderNumber string) string {
	return receiptURLPrefix + orderNumber + "/receipt"
}

// ReceiptIssuer renders receipts and, when a store is configured, persists them.
type ReceiptIssuer struct {
	Store     *receipt.Store
	StoreName string
}

func (r *ReceiptIssuer) Issue(o *models.Order) ([]byte, error) {
	name := ""
	if r != nil {
		name = r.StoreName
	}
	body := []byte(receipt.Render(receipt.FromOrder(name, o)))
	if r == nil || r.Store == nil {
		return body, nil
	}
	return body, r.Store.Save(o.OrderNumber, body)
}
