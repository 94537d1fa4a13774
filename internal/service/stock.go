package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// Availability is advisory: nothing is reserved by a successful check.
type Availability struct {
	OK        bool
	Message   string
	Remaining int
}

func (a Availability) Err() error {
	if a.OK {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOutOfStock, a.Message)
}

type StockChecker struct {
	Repo *repo.GormRepo
}

// Check reports whether quantity units of the product can be supplied. With a
// size the size row decides; without one the aggregate stock of a published
// product does.
func (s *StockChecker) Check(ctx context.Context, productID uint, size string, quantity int) (Availability, error) {
	size = strings.TrimSpace(size)
	if size != "" {
		ps, err := s.Repo.FindProductSize(ctx, productID, size)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Availability{Message: fmt.Sprintf("size %s unavailable", size)}, nil
		}
		if err != nil {
			return Availability{}, err
		}
		return sizeAvailability(size, ps.Quantity, quantity), nil
	}

	p, err := s.Repo.GetProduct(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Availability{Message: "product not found"}, nil
	}
	if err != nil {
		return Availability{}, err
	}
	return productAvailability(p, quantity), nil
}

func sizeAvailability(size string, have, want int) Availability {
	if want > have {
		return Availability{Remaining: have, Message: fmt.Sprintf("only %d left in size %s", have, size)}
	}
	return Availability{OK: true, Remaining: have}
}

func productAvailability(p *models.Product, want int) Availability {
	if !p.IsPublished {
		return Availability{Message: "product not found"}
	}
	if want > p.Stock {
		return Availability{Remaining: p.Stock, Message: fmt.Sprintf("only %d left", p.Stock)}
	}
	return Availability{OK: true, Remaining: p.Stock}
}
