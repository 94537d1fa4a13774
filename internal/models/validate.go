package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinLineQuantity  = 1
	MaxLineQuantity  = 10
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
)

var (
	ErrQuantityRange   = errors.New("quantity out of range")
	ErrRatingRange     = errors.New("rating out of range")
	ErrCommentTooShort = errors.New("comment too short")
)

func ValidateQuantity(q int) error {
	if q < MinLineQuantity || q > MaxLineQuantity {
		return fmt.Errorf("%w: must be between %d and %d, got %d", ErrQuantityRange, MinLineQuantity, MaxLineQuantity, q)
	}
	return nil
}

// ValidateReview checks rating bounds and the trimmed comment length (in runes).
func ValidateReview(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: must be between %d and %d", ErrRatingRange, MinRating, MaxRating)
	}
	if utf8.RuneCountInString(strings.TrimSpace(comment)) < MinCommentLength {
		return fmt.Errorf("%w: at least %d characters required", ErrCommentTooShort, MinCommentLength)
	}
	return nil
}

func NewCartItem(userID, productID uint, size string, quantity int) (*CartItem, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &CartItem{
		UserID:    userID,
		ProductID: productID,
		Size:      strings.TrimSpace(size),
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}, nil
}

func NewReview(userID, productID uint, rating int, comment string) (*Review, error) {
	if err := ValidateReview(rating, comment); err != nil {
		return nil, err
	}
	return &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}, nil
}
