package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentOnline = "online"

	maxOrderNumberAttempts = 3
)

type CheckoutRequest struct {
	Address       string
	PaymentMethod string
	Phone         string
	Email         string
	FullName      string
	Comment       string
}

func (r *CheckoutRequest) normalize() error {
	r.Address = strings.TrimSpace(r.Address)
	r.PaymentMethod = strings.ToLower(strings.TrimSpace(r.PaymentMethod))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Comment = strings.TrimSpace(r.Comment)

	if r.Address == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	switch r.PaymentMethod {
	case "":
		r.PaymentMethod = PaymentCash
	case PaymentCash, PaymentCard, PaymentOnline:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, r.PaymentMethod)
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return fmt.Errorf("%w: invalid email", ErrValidation)
		}
	}
	return nil
}

type CheckoutResult struct {
	OrderNumber string
	OrderID     uint
	Total       decimal.Decimal
	ReceiptURL  string
}

type CheckoutService struct {
	Repo     *repo.GormRepo
	Receipts *ReceiptIssuer
	Events   Publisher
	Cache    CatalogCache

	// overridable in tests
	Now            func() time.Time
	NewOrderNumber func(time.Time) string
}

// NewOrderNumber returns ORD-<UTC timestamp>-<8 random hex digits>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + suffix
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CheckoutService) orderNumber(t time.Time) string {
	if s.NewOrderNumber != nil {
		return s.NewOrderNumber(t)
	}
	return NewOrderNumber(t)
}

// Checkout turns the user's cart into an order. Locking the cart, re-checking
// stock, writing the order, decrementing stock and emptying the cart commit
// together or not at all. The receipt, the event and cache invalidation run
// after commit and cannot undo it.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, req CheckoutRequest) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("op", "checkout", "user_id", userID)

	if err := req.normalize(); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order, err = s.placeOrder(ctx, userID, req)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		l.Warn("order_number_collision", "attempt", attempt)
	}
	if err != nil {
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrCheckout) {
			return nil, err
		}
		l.Error("checkout_tx_error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCheckout, err)
	}

	if _, err := s.Receipts.Issue(order); err != nil {
		l.Error("receipt_write_error", "order_number", order.OrderNumber, "error", err)
	}

	publish(ctx, s.Events, TopicOrder, order.OrderNumber, map[string]any{
		"type":        "order_created",
		"userID":      userID,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.TotalAmount.StringFixed(2),
		"items":       len(order.Items),
	})
	invalidate(ctx, s.Cache)

	l.Info("order_created", "order_number", order.OrderNumber, "total", order.TotalAmount.StringFixed(2))
	return &CheckoutResult{
		OrderNumber: order.OrderNumber,
		OrderID:     order.ID,
		Total:       order.TotalAmount,
		ReceiptURL:  ReceiptURL(order.OrderNumber),
	}, nil
}

type sizeKey struct {
	productID uint
	size      string
}

func shortage(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrCheckout, ErrOutOfStock, fmt.Sprintf(format, args...))
}

func (s *CheckoutService) placeOrder(ctx context.Context, userID uint, req CheckoutRequest) (*models.Order, error) {
	var order *models.Order

	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		demand := make(map[uint]int)
		sizeDemand := make(map[sizeKey]int)
		for _, l := range lines {
			demand[l.ProductID] += l.Quantity
			if l.Size != "" {
				sizeDemand[sizeKey{l.ProductID, l.Size}] += l.Quantity
			}
		}
		ids := make([]uint, 0, len(demand))
		for id := range demand {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		products, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		sizes, err := tx.LockSizes(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[uint]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		sizeStock := make(map[sizeKey]int, len(sizes))
		for _, ps := range sizes {
			sizeStock[sizeKey{ps.ProductID, ps.Size}] = ps.Quantity
		}

		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return shortage("product %d is no longer available", id)
			}
			if a := productAvailability(p, demand[id]); !a.OK {
				return shortage("%s: %s", p.Name, a.Message)
			}
		}
		for key, want := range sizeDemand {
			have, ok := sizeStock[key]
			if !ok {
				return shortage("%s: size %s unavailable", byID[key.productID].Name, key.size)
			}
			if a := sizeAvailability(key.size, have, want); !a.OK {
				return shortage("%s: %s", byID[key.productID].Name, a.Message)
			}
		}

		now := s.now()
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			p := byID[l.ProductID]
			item := models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Size:        l.Size,
				Quantity:    l.Quantity,
				UnitPrice:   p.Price,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order = &models.Order{
			UserID:          userID,
			OrderNumber:     s.orderNumber(now),
			TotalAmount:     total,
			Status:          models.OrderStatusProcessing,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.Address,
			BillingAddress:  req.Address,
			Notes:           req.Comment,
			ContactName:     req.FullName,
			ContactPhone:    req.Phone,
			ContactEmail:    req.Email,
			CreatedAt:       now,
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, l := range lines {
			n, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return shortage("stock changed for product %d", l.ProductID)
			}
			if l.Size == "" {
				continue
			}
			n, err = tx.DecrementSizeStock(ctx, l.ProductID, l.Size, l.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return shortage("stock changed for product %d size %s", l.ProductID, l.Size)
			}
		}

		_, err = tx.ClearCart(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
