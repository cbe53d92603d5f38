package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdantia/storefront-backend/internal/app/service"
	"github.com/verdantia/storefront-backend/internal/cart"
	apperrors "github.com/verdantia/storefront-backend/internal/errors"
	"github.com/verdantia/storefront-backend/internal/export"
	"github.com/verdantia/storefront-backend/internal/middleware"
	"github.com/verdantia/storefront-backend/pkg/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CartController struct {
	cartService   service.CartService
	sessionSecret string
	sessionTTL    time.Duration
}

func NewCartController(cartService service.CartService, sessionSecret string, sessionTTL time.Duration) *CartController {
	return &CartController{
		cartService:   cartService,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// Quantity 0 removes the line, so it cannot use the required tag on an int.
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateSession opens an anonymous cart session
// POST /api/v1/cart/session
func (ctrl *CartController) CreateSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, err := util.NewCartSession(ctrl.sessionSecret, ctrl.sessionTTL)
	if err != nil {
		log.Error("Failed to create cart session", err)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Cart session created", map[string]interface{}{
		"session_id": token.SessionID,
	})
	c.JSON(http.StatusCreated, token)
}

// GetCart returns the session's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	state, err := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		ctrl.respondCartError(c, "get_cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// AddToCart adds a catalog product to the cart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Indica el producto y una cantidad mayor a cero")
		return
	}

	state, err := ctrl.cartService.AddToCart(c.Request.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, "add_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// UpdateCartItem sets a line's quantity; zero or less removes it
// PUT /api/v1/cart/items/:productId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Indica la nueva cantidad")
		return
	}

	state, err := ctrl.cartService.UpdateCartItem(c.Request.Context(), sessionID, c.Param("productId"), *req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, "update_quantity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// RemoveFromCart deletes a line; absent lines are not an error
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	state, err := ctrl.cartService.RemoveFromCart(c.Request.Context(), sessionID, c.Param("productId"))
	if err != nil {
		ctrl.respondCartError(c, "remove_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// ClearCart empties the cart and drops its coupon
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	state, err := ctrl.cartService.ClearCart(c.Request.Context(), sessionID)
	if err != nil {
		ctrl.respondCartError(c, "clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// ApplyCoupon validates and attaches a coupon
// POST /api/v1/cart/coupon
func (ctrl *CartController) ApplyCoupon(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Ingresa un código de cupón")
		return
	}

	state, err := ctrl.cartService.ApplyCoupon(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		ctrl.respondCartError(c, "apply_coupon", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// RemoveCoupon detaches the coupon
// DELETE /api/v1/cart/coupon
func (ctrl *CartController) RemoveCoupon(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	state, err := ctrl.cartService.RemoveCoupon(c.Request.Context(), sessionID)
	if err != nil {
		ctrl.respondCartError(c, "remove_coupon", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// EstimateShipping returns the advisory shipping cost
// GET /api/v1/cart/shipping?region=&postal_code=
func (ctrl *CartController) EstimateShipping(c *gin.Context) {
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	dest := cart.Destination{
		Region:     c.Query("region"),
		PostalCode: c.Query("postal_code"),
	}
	cost, err := ctrl.cartService.EstimateShipping(c.Request.Context(), sessionID, dest)
	if err != nil {
		ctrl.respondCartError(c, "estimate_shipping", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping":    cost,
		"region":      dest.Region,
		"postal_code": dest.PostalCode,
	})
}

// ExportCart downloads the cart as an xlsx workbook
// GET /api/v1/cart/export
func (ctrl *CartController) ExportCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, ok := ctrl.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	state, err := ctrl.cartService.GetCart(ctx, sessionID)
	if err != nil {
		ctrl.respondCartError(c, "export", err)
		return
	}
	shipping, err := ctrl.cartService.EstimateShipping(ctx, sessionID, cart.Destination{Region: c.Query("region")})
	if err != nil {
		ctrl.respondCartError(c, "export", err)
		return
	}

	buf, err := export.CartWorkbook(state, shipping)
	if err != nil {
		log.Error("Failed to build cart workbook", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "No se pudo generar el archivo del carrito")
		return
	}

	filename := fmt.Sprintf("carrito-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (ctrl *CartController) session(c *gin.Context) (string, bool) {
	sessionID, ok := middleware.GetCartSessionID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.SessionMissing, "Necesitas una sesión de carrito")
		return "", false
	}
	return sessionID, true
}

func (ctrl *CartController) respondCartError(c *gin.Context, op string, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrInvalidSession):
		apperrors.Unauthorized(c, apperrors.SessionInvalid, "")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "El producto no existe")
	case errors.Is(err, cart.ErrInsufficientStock):
		apperrors.Conflict(c, apperrors.CartInsufficientStock, "No hay stock suficiente para la cantidad solicitada")
	case errors.Is(err, cart.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "La cantidad debe ser al menos 1")
	case errors.Is(err, cart.ErrInvalidProduct):
		apperrors.UnprocessableEntity(c, apperrors.CartInvalidProduct, "Ese producto no se puede agregar al carrito")
	case errors.Is(err, cart.ErrLineNotFound):
		apperrors.NotFound(c, apperrors.CartLineNotFound, "Ese producto no está en tu carrito")
	case errors.Is(err, cart.ErrInvalidCoupon):
		apperrors.UnprocessableEntity(c, apperrors.CouponInvalid, "El cupón no es válido")
	default:
		log.Error("Cart operation failed", err, map[string]interface{}{
			"operation": op,
		})
		apperrors.InternalError(c, "")
	}
}
