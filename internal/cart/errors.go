package cart

import "errors"

var (
	// ErrInsufficientStock is returned when a requested quantity exceeds
	// the available stock. The cart is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidCoupon is returned when the coupon validator rejects a code
	// or cannot be reached.
	ErrInvalidCoupon = errors.New("invalid coupon")

	// ErrInvalidQuantity is returned when AddItem receives a quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidProduct is returned when a product snapshot lacks an ID or
	// name, or carries a negative price.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrLineNotFound is returned when a positive quantity update targets a
	// product that is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")

	// ErrUnknownCommand is returned by Reduce for a command it cannot handle.
	ErrUnknownCommand = errors.New("unknown cart command")

	// ErrPersistenceWrite marks a failed blob write. It is logged and
	// never returned to command callers.
	ErrPersistenceWrite = errors.New("cart persistence write failed")

	// ErrBlobNotFound is returned by BlobStore.Get when the key is absent.
	ErrBlobNotFound = errors.New("cart blob not found")
)
