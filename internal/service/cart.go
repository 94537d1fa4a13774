package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
)

type CartService struct {
	Repo   *repo.GormRepo
	Images *util.ImageResolver
	Events Publisher
}

type AddResult struct {
	CartCount   int
	Action      string
	ProductName string
	Quantity    int
}

type UpdateResult struct {
	OldQuantity int
	NewQuantity int
	CartCount   int
}

type CartView struct {
	Items         []models.CartLine
	TotalQuantity int
	TotalPrice    decimal.Decimal
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func validQuantity(q int) error {
	if err := models.ValidateQuantity(q); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// Add puts quantity units of (product, size) in the user's cart, merging into
// an existing line for the same pair.
func (s *CartService) Add(ctx context.Context, userID, productID uint, size string, quantity int) (*AddResult, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}
	size = strings.TrimSpace(size)

	var (
		res *AddResult
		err error
	)
	// a concurrent insert of the same line loses on the unique key; the second
	// pass sees it and merges
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.add(ctx, userID, productID, size, quantity)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
		"type":      "cart_item_" + res.Action,
		"userID":    userID,
		"productID": productID,
		"size":      size,
		"quantity":  res.Quantity,
	})
	return res, nil
}

func (s *CartService) add(ctx context.Context, userID, productID uint, size string, quantity int) (*AddResult, error) {
	res := &AddResult{}
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		product, err := tx.GetProduct(ctx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !product.IsPublished) {
			return fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		if err != nil {
			return err
		}

		existing, err := tx.FindCartLine(ctx, userID, productID, size)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		total := quantity
		if existing != nil {
			total = existing.Quantity + quantity
			if total > models.MaxLineQuantity {
				return fmt.Errorf("%w: cart already holds %d of this item, limit is %d",
					ErrCapacity, existing.Quantity, models.MaxLineQuantity)
			}
		}

		stock := &StockChecker{Repo: tx}
		avail, err := stock.Check(ctx, productID, size, total)
		if err != nil {
			return err
		}
		if err := avail.Err(); err != nil {
			return err
		}

		if existing != nil {
			if _, err := tx.SetCartLineQuantity(ctx, userID, existing.ID, total); err != nil {
				return err
			}
			res.Action = ActionUpdated
		} else {
			item, err := models.NewCartItem(userID, productID, size, quantity)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			if err := tx.CreateCartLine(ctx, item); err != nil {
				return err
			}
			res.Action = ActionAdded
		}

		count, err := tx.CartCount(ctx, userID)
		if err != nil {
			return err
		}
		res.CartCount = count
		res.ProductName = product.Name
		res.Quantity = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateQuantity replaces the quantity of one of the user's lines.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*UpdateResult, error) {
	if err := validQuantity(quantity); err != nil {
		return nil, err
	}

	res := &UpdateResult{NewQuantity: quantity}
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		line, err := tx.GetCartLine(ctx, userID, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
		}
		if err != nil {
			return err
		}

		stock := &StockChecker{Repo: tx}
		avail, err := stock.Check(ctx, line.ProductID, line.Size, quantity)
		if err != nil {
			return err
		}
		if err := avail.Err(); err != nil {
			return err
		}

		n, err := tx.SetCartLineQuantity(ctx, userID, itemID, quantity)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
		}

		res.OldQuantity = line.Quantity
		res.CartCount, err = tx.CartCount(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Remove deletes one of the user's lines and returns the product name.
func (s *CartService) Remove(ctx context.Context, userID, itemID uint) (string, error) {
	var name string
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		line, err := tx.GetCartLine(ctx, userID, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
		}
		if err != nil {
			return err
		}

		name, err = tx.ProductName(ctx, line.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		n, err := tx.DeleteCartLine(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
		"type":       "cart_item_removed",
		"userID":     userID,
		"cartItemID": itemID,
	})
	return name, nil
}

// Clear empties the cart. An already empty cart reports 0.
func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	n, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
			"type":    "cart_cleared",
			"userID":  userID,
			"removed": n,
		})
	}
	return n, nil
}

func (s *CartService) List(ctx context.Context, userID uint) (*CartView, error) {
	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	stock := &StockChecker{Repo: s.Repo}
	view := &CartView{Items: lines, TotalPrice: decimal.Zero}
	for i := range lines {
		l := &lines[i]
		l.InStock = l.IsPublished && l.Stock >= 1
		if l.InStock && l.Size != "" {
			avail, err := stock.Check(ctx, l.ProductID, l.Size, l.Quantity)
			if err != nil {
				return nil, err
			}
			l.InStock = avail.OK
		}
		l.MainImage = s.Images.Resolve(l.MainImage)

		view.TotalQuantity += l.Quantity
		view.TotalPrice = view.TotalPrice.Add(l.Subtotal())
	}
	return view, nil
}

func (s *CartService) Count(ctx context.Context, userID uint) (int, error) {
	return s.Repo.CartCount(ctx, userID)
}
