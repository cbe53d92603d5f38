package repository

import (
	"strings"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(coupon *model.Coupon) error
	FindByCode(code string) (*model.Coupon, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if err := r.db.Create(coupon).Error; err != nil {
		logger.Error("Failed to create coupon in database", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}
	return nil
}

// FindByCode matches codes case-insensitively; codes are stored upper-case.
func (r *couponRepository) FindByCode(code string) (*model.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	logger.Debug("Finding coupon by code in database", map[string]interface{}{
		"code": normalized,
	})

	var coupon model.Coupon
	if err := r.db.Where("code = ?", normalized).First(&coupon).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find coupon by code in database", err, map[string]interface{}{
				"code": normalized,
			})
		}
		return nil, err
	}
	return &coupon, nil
}
