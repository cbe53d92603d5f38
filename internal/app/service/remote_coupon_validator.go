package service

import (
	"context"

	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/pkg/coupon"
)

// RemoteCouponValidator adapts the HTTP coupon client to cart.CouponValidator.
type RemoteCouponValidator struct {
	client *coupon.Client
}

func NewRemoteCouponValidator(client *coupon.Client) *RemoteCouponValidator {
	return &RemoteCouponValidator{client: client}
}

func (v *RemoteCouponValidator) ValidateCoupon(ctx context.Context, code string) (*cart.CouponResult, error) {
	res, err := v.client.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	terms := res.Terms()
	return &cart.CouponResult{
		Valid:              res.Valid,
		Code:               terms.Code,
		Description:        terms.Description,
		DiscountPercentage: terms.DiscountPercentage,
		MaxDiscount:        terms.MaxDiscount,
		Message:            res.Message,
	}, nil
}
