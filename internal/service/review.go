package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// Actor is the authenticated caller of an ownership-checked operation.
type Actor struct {
	UserID uint
	Staff  bool
}

func (a Actor) mayModify(r *models.Review) bool {
	return a.Staff || r.UserID == a.UserID
}

type ReviewService struct {
	Repo   *repo.GormRepo
	Events Publisher
	Cache  CatalogCache
}

func reviewValidation(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Add stores the user's only review of a published product.
func (s *ReviewService) Add(ctx context.Context, userID, productID uint, rating int, comment string) (*models.Review, error) {
	review, err := models.NewReview(userID, productID, rating, comment)
	if err != nil {
		return nil, reviewValidation(err)
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !product.IsPublished) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.Repo.ReviewExists(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: product %d already reviewed", ErrDuplicate, productID)
	}

	if err := s.Repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: product %d already reviewed", ErrDuplicate, productID)
		}
		return nil, err
	}

	s.changed(ctx, "review_created", review)
	return review, nil
}

func (s *ReviewService) load(ctx context.Context, actor Actor, reviewID uint) (*models.Review, error) {
	review, err := s.Repo.GetReview(ctx, reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
	}
	if err != nil {
		return nil, err
	}
	if !actor.mayModify(review) {
		return nil, fmt.Errorf("%w: review %d belongs to another user", ErrForbidden, reviewID)
	}
	return review, nil
}

// Edit lets the author or staff change rating and comment. Ownership is
// checked before the payload.
func (s *ReviewService) Edit(ctx context.Context, actor Actor, reviewID uint, rating int, comment string) (*models.Review, error) {
	review, err := s.load(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateReview(rating, comment); err != nil {
		return nil, reviewValidation(err)
	}

	review.Rating = rating
	review.Comment = strings.TrimSpace(comment)
	if err := s.Repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	s.changed(ctx, "review_updated", review)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor Actor, reviewID uint) error {
	review, err := s.load(ctx, actor, reviewID)
	if err != nil {
		return err
	}

	n, err := s.Repo.DeleteReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
	}

	s.changed(ctx, "review_deleted", review)
	return nil
}

func (s *ReviewService) ListForProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	return s.Repo.ReviewsForProduct(ctx, productID)
}

func (s *ReviewService) changed(ctx context.Context, typ string, r *models.Review) {
	publish(ctx, s.Events, TopicReview, strconv.FormatUint(uint64(r.ProductID), 10), map[string]any{
		"type":      typ,
		"reviewID":  r.ID,
		"productID": r.ProductID,
		"userID":    r.UserID,
		"rating":    r.Rating,
	})
	invalidate(ctx, s.Cache)
}
