package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartItem_QuantityBounds(t *testing.T) {
	t.Parallel()

	for _, q := range []int{-1, 0, 11, 100} {
		_, err := NewCartItem(1, 1, "", q)
		assert.ErrorIs(t, err, ErrQuantityRange, "quantity %d", q)
	}

	for _, q := range []int{1, 5, 10} {
		item, err := NewCartItem(1, 2, " 42 ", q)
		require.NoError(t, err)
		assert.Equal(t, q, item.Quantity)
		assert.Equal(t, "42", item.Size)
		assert.False(t, item.AddedAt.IsZero())
	}
}

func TestNewReview_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewReview(1, 1, 0, "long enough comment")
	assert.ErrorIs(t, err, ErrRatingRange)

	_, err = NewReview(1, 1, 6, "long enough comment")
	assert.ErrorIs(t, err, ErrRatingRange)

	_, err = NewReview(1, 1, 4, "   short    ")
	assert.ErrorIs(t, err, ErrCommentTooShort)

	r, err := NewReview(7, 3, 5, "  отличные ботинки  ")
	require.NoError(t, err)
	assert.Equal(t, "отличные ботинки", r.Comment)
	assert.EqualValues(t, 7, r.UserID)
	assert.EqualValues(t, 3, r.ProductID)
}

func TestValidateReview_CountsRunes(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateReview(3, strings.Repeat("ж", MinCommentLength)))
	assert.Error(t, ValidateReview(3, strings.Repeat("ж", MinCommentLength-1)))
}

func TestOrderItem_Subtotal(t *testing.T) {
	t.Parallel()

	item := OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")}
	assert.True(t, decimal.RequireFromString("59.97").Equal(item.Subtotal()))
}
