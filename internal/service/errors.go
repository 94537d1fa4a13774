package service

import "errors"

var (
	ErrValidation = errors.New("validation")              // 400
	ErrCapacity   = errors.New("quantity limit exceeded") // 400
	ErrOutOfStock = errors.New("out of stock")            // 400, 409 at checkout
	ErrEmptyCart  = errors.New("cart is empty")           // 400
	ErrNotFound   = errors.New("not found")               // 404
	ErrForbidden  = errors.New("forbidden")               // 403
	ErrDuplicate  = errors.New("duplicate")               // 409
	ErrCheckout   = errors.New("checkout failed")
)
