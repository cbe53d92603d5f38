package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon inactive")
	ErrCouponExpired       = errors.New("coupon outside its validity window")
	ErrCouponMisconfigured = errors.New("coupon percentage out of range")
)

type CouponService interface {
	// Lookup returns the redeemable coupon for code or one of the
	// ErrCoupon* sentinels.
	Lookup(code string) (*model.Coupon, error)
	cart.CouponValidator
}

type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo, now: time.Now}
}

func (s *couponService) Lookup(code string) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}

	coupon, err := s.couponRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		logger.Error("Failed to fetch coupon", err, map[string]interface{}{
			"code": code,
		})
		return nil, err
	}

	switch {
	case !coupon.Active:
		return nil, ErrCouponInactive
	case !coupon.InWindow(s.now()):
		return nil, ErrCouponExpired
	case coupon.DiscountPercentage < 0 || coupon.DiscountPercentage > 100:
		logger.Warn("Coupon has an out-of-range percentage", map[string]interface{}{
			"code":       coupon.Code,
			"percentage": coupon.DiscountPercentage,
		})
		return nil, ErrCouponMisconfigured
	}
	return coupon, nil
}

// ValidateCoupon reports domain rejections as an invalid result. Only
// storage failures come back as errors.
func (s *couponService) ValidateCoupon(_ context.Context, code string) (*cart.CouponResult, error) {
	coupon, err := s.Lookup(code)
	if err != nil {
		if msg, ok := couponRejection(err); ok {
			logger.Info("Coupon rejected", map[string]interface{}{
				"code":   code,
				"reason": err.Error(),
			})
			return &cart.CouponResult{Valid: false, Code: code, Message: msg}, nil
		}
		return nil, err
	}

	return &cart.CouponResult{
		Valid:              true,
		Code:               coupon.Code,
		Description:        coupon.Description,
		DiscountPercentage: coupon.DiscountPercentage,
		MaxDiscount:        coupon.MaxDiscount,
	}, nil
}

func couponRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "El cupón no existe", true
	case errors.Is(err, ErrCouponInactive):
		return "El cupón no está activo", true
	case errors.Is(err, ErrCouponExpired):
		return "El cupón está vencido", true
	case errors.Is(err, ErrCouponMisconfigured):
		return "El cupón no es válido", true
	}
	return "", false
}
