package cart

import "context"

// CouponResult is the coupon collaborator's verdict on a code.
type CouponResult struct {
	Valid              bool
	Code               string
	Description        string
	DiscountPercentage float64
	MaxDiscount        *float64
	Message            string
}

// CouponValidator checks a coupon code. A transport error is handled
// exactly like an invalid result.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string) (*CouponResult, error)
}
