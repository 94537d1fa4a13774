package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/receipt"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Receipts *ReceiptIssuer
}

type OrderPage struct {
	Items []models.Order
	Meta  util.PageMeta
}

func (s *OrderService) List(ctx context.Context, userID uint, page, size int) (*OrderPage, error) {
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)

	total, orders, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Items: orders, Meta: util.Meta(page, size, total)}, nil
}

func (s *OrderService) Get(ctx context.Context, userID uint, number string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, userID, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, number)
	}
	return order, err
}

// Receipt returns the stored receipt of the user's order, re-rendering it from
// the order when the file is missing.
func (s *OrderService) Receipt(ctx context.Context, userID uint, number string) ([]byte, error) {
	order, err := s.Get(ctx, userID, number)
	if err != nil {
		return nil, err
	}

	if s.Receipts != nil && s.Receipts.Store != nil {
		body, err := s.Receipts.Store.Open(number)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, receipt.ErrNotFound) {
			return nil, err
		}
	}

	body, err := s.Receipts.Issue(order)
	if err != nil {
		logging.FromContext(ctx).Warn("receipt_regenerate_error", "order_number", number, "error", err)
	}
	return body, nil
}

// RegenerateReceipts re-renders and stores the receipts of the given orders,
// or of every order when numbers is empty.
func (s *OrderService) RegenerateReceipts(ctx context.Context, numbers []string) (int, error) {
	if len(numbers) == 0 {
		var err error
		numbers, err = s.Repo.AllOrderNumbers(ctx)
		if err != nil {
			return 0, err
		}
	}

	done := 0
	for _, n := range numbers {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		order, err := s.Repo.GetOrderByNumber(ctx, n)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return done, fmt.Errorf("%w: order %s", ErrNotFound, n)
		}
		if err != nil {
			return done, err
		}
		if _, err := s.Receipts.Issue(order); err != nil {
			return done, fmt.Errorf("order %s: %w", n, err)
		}
		done++
	}
	return done, nil
}
