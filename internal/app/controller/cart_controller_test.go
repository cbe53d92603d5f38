package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/app/service"
	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/verdantia/storefront-backend/internal/export"
	"github.com/verdantia/storefront-backend/internal/middleware"
	"github.com/xuri/excelize/v2"
)

const testSessionSecret = "controller-test-secret"

type cartResponse struct {
	Cart cart.State `json:"cart"`
}

func setupCartControllerTest(t *testing.T) (*gin.Engine, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	product := &model.Product{
		Name:          "Té verde sencha",
		Price:         18500,
		Weight:        0.15,
		Presentation:  "Lata 150 g",
		Category:      model.CategoryTeas,
		StockQuantity: 4,
	}
	require.NoError(t, testDB.Create(product).Error)
	maxDiscount := 100.0
	require.NoError(t, testDB.Create(&model.Coupon{
		Code: "SAVE10", DiscountPercentage: 10, MaxDiscount: &maxDiscount, Active: true,
	}).Error)

	cartService := service.NewCartService(
		cart.NewMemoryStore(),
		repository.NewProductRepository(testDB),
		service.NewCouponService(repository.NewCouponRepository(testDB)),
		service.CartServiceOptions{Rates: cart.ShippingRates{Base: 5000, PerWeightUnit: 10000}},
	)
	ctrl := NewCartController(cartService, testSessionSecret, time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/cart/session", ctrl.CreateSession)
	group := router.Group("/cart", middleware.NewCartSessionMiddleware(testSessionSecret).RequireSession())
	group.GET("", ctrl.GetCart)
	group.DELETE("", ctrl.ClearCart)
	group.POST("/items", ctrl.AddToCart)
	group.PUT("/items/:productId", ctrl.UpdateCartItem)
	group.DELETE("/items/:productId", ctrl.RemoveFromCart)
	group.POST("/coupon", ctrl.ApplyCoupon)
	group.DELETE("/coupon", ctrl.RemoveCoupon)
	group.GET("/shipping", ctrl.EstimateShipping)
	group.GET("/export", ctrl.ExportCart)

	return router, product
}

func newSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/session", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cart.State {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Cart
}

func TestCartController_RequiresSession(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doJSON(router, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_MISSING")
}

func TestCartController_GetCart_Empty(t *testing.T) {
	router, _ := setupCartControllerTest(t)
	token := newSession(t, router)

	w := doJSON(router, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeCart(t, w)
	assert.Empty(t, state.Lines)
	assert.Zero(t, state.Total)
	assert.Contains(t, w.Body.String(), `"lines":[]`)
}

func TestCartController_AddToCart(t *testing.T) {
	router, product := setupCartControllerTest(t)
	token := newSession(t, router)

	w := doJSON(router, http.MethodPost, "/cart/items", token, gin.H{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeCart(t, w)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 37000.0, state.Subtotal)

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
	}{
		{"exceeds stock", gin.H{"product_id": product.ID, "quantity": 3}, http.StatusConflict, "CART_INSUFFICIENT_STOCK"},
		{"unknown product", gin.H{"product_id": 9999, "quantity": 1}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"zero quantity", gin.H{"product_id": product.ID, "quantity": 0}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
		{"missing product", gin.H{"quantity": 1}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/cart/items", token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}

	w = doJSON(router, http.MethodGet, "/cart", token, nil)
	assert.Equal(t, 2, decodeCart(t, w).ItemCount)
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	router, product := setupCartControllerTest(t)
	token := newSession(t, router)
	path := fmt.Sprintf("/cart/items/%d", product.ID)

	doJSON(router, http.MethodPost, "/cart/items", token, gin.H{"product_id": product.ID, "quantity": 1})

	w := doJSON(router, http.MethodPut, path, token, gin.H{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decodeCart(t, w).ItemCount)

	w = doJSON(router, http.MethodPut, path, token, gin.H{"quantity": 5})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPut, "/cart/items/777", token, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CART_LINE_NOT_FOUND")

	w = doJSON(router, http.MethodPut, path, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, path, token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Lines)

	w = doJSON(router, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartController_CouponLifecycle(t *testing.T) {
	router, product := setupCartControllerTest(t)
	token := newSession(t, router)

	doJSON(router, http.MethodPost, "/cart/items", token, gin.H{"product_id": product.ID, "quantity": 2})

	w := doJSON(router, http.MethodPost, "/cart/coupon", token, gin.H{"code": "save10"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeCart(t, w)
	require.NotNil(t, state.Coupon)
	assert.Equal(t, 100.0, state.Discount)
	assert.Equal(t, 36900.0, state.Total)

	w = doJSON(router, http.MethodPost, "/cart/coupon", token, gin.H{"code": "BOGUS"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "COUPON_INVALID")

	w = doJSON(router, http.MethodPost, "/cart/coupon", token, gin.H{"code": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodDelete, "/cart/coupon", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeCart(t, w)
	assert.Nil(t, state.Coupon)
	assert.Zero(t, state.Discount)

	w = doJSON(router, http.MethodDelete, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Lines)
}

func TestCartController_ShippingAndExport(t *testing.T) {
	router, product := setupCartControllerTest(t)
	token := newSession(t, router)

	doJSON(router, http.MethodPost, "/cart/items", token, gin.H{"product_id": product.ID, "quantity": 2})

	w := doJSON(router, http.MethodGet, "/cart/shipping?region=Antioquia", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shipping struct {
		Shipping float64 `json:"shipping"`
		Region   string  `json:"region"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shipping))
	// 5000 + 0.15 × 2 × 10000
	assert.Equal(t, 8000.0, shipping.Shipping)
	assert.Equal(t, "Antioquia", shipping.Region)

	w = doJSON(router, http.MethodGet, "/cart/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "carrito-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue(export.CartSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Té verde sencha", name)
}

func TestCartController_SessionsDoNotShareCarts(t *testing.T) {
	router, product := setupCartControllerTest(t)
	first := newSession(t, router)
	second := newSession(t, router)

	doJSON(router, http.MethodPost, "/cart/items", first, gin.H{"product_id": product.ID, "quantity": 1})

	w := doJSON(router, http.MethodGet, "/cart", second, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Lines)
}
