package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdantia/storefront-backend/internal/app/service"
	apperrors "github.com/verdantia/storefront-backend/internal/errors"
	"github.com/verdantia/storefront-backend/internal/middleware"
	"github.com/verdantia/storefront-backend/pkg/coupon"
)

type CouponController struct {
	couponService service.CouponService
}

func NewCouponController(couponService service.CouponService) *CouponController {
	return &CouponController{couponService: couponService}
}

// ValidateCoupon answers the coupon validation protocol used by remote
// cart engines. Rejections are 422 with a descriptor body.
// POST /api/v1/coupons/validate
func (ctrl *CouponController) ValidateCoupon(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req coupon.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Ingresa un código de cupón")
		return
	}

	found, err := ctrl.couponService.Lookup(req.Code)
	if err != nil {
		resp := coupon.ValidateResponse{Valid: false, Coupon: &coupon.Descriptor{Code: req.Code}}
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			resp.Message = "El cupón no existe"
		case errors.Is(err, service.ErrCouponInactive):
			resp.Message = "El cupón no está activo"
		case errors.Is(err, service.ErrCouponExpired):
			resp.Message = "El cupón está vencido"
		case errors.Is(err, service.ErrCouponMisconfigured):
			resp.Message = "El cupón no es válido"
		default:
			log.Error("Failed to validate coupon", err, map[string]interface{}{
				"code": req.Code,
			})
			apperrors.InternalError(c, "")
			return
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	c.JSON(http.StatusOK, coupon.ValidateResponse{
		Valid: true,
		Coupon: &coupon.Descriptor{
			Code:               found.Code,
			Description:        found.Description,
			DiscountPercentage: found.DiscountPercentage,
			MaxDiscount:        found.MaxDiscount,
		},
		Description:        found.Description,
		DiscountPercentage: found.DiscountPercentage,
		MaxDiscount:        found.MaxDiscount,
	})
}
