package errors

// Error codes returned in the "error" field of API responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps them to UI copy.

const (
	// Cart session
	SessionMissing = "SESSION_MISSING"
	SessionInvalid = "SESSION_INVALID"
	SessionExpired = "SESSION_EXPIRED"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// Catalog
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// Cart
	CartInsufficientStock = "CART_INSUFFICIENT_STOCK"
	CartInvalidQuantity   = "CART_INVALID_QUANTITY"
	CartLineNotFound      = "CART_LINE_NOT_FOUND"
	CartInvalidProduct    = "CART_INVALID_PRODUCT"

	// Coupons
	CouponInvalid = "COUPON_INVALID"

	// Internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
