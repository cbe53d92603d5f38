package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/verdantia/storefront-backend/pkg/coupon"
)

func setupCouponServiceTest(t *testing.T) *couponService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	coupons := []model.Coupon{
		{Code: "SAVE10", DiscountPercentage: 10, Active: true, StartsAt: &yesterday, ExpiresAt: &tomorrow},
		{Code: "PAUSED", DiscountPercentage: 10, Active: true},
		{Code: "OLD", DiscountPercentage: 20, Active: true, StartsAt: &past, ExpiresAt: &yesterday},
		{Code: "SOON", DiscountPercentage: 20, Active: true, StartsAt: &tomorrow},
		{Code: "BROKEN", DiscountPercentage: 150, Active: true},
	}
	require.NoError(t, testDB.Create(&coupons).Error)
	require.NoError(t, testDB.Model(&model.Coupon{}).Where("code = ?", "PAUSED").Update("active", false).Error)

	svc := NewCouponService(repository.NewCouponRepository(testDB)).(*couponService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCouponService_Lookup(t *testing.T) {
	svc := setupCouponServiceTest(t)

	tests := []struct {
		code    string
		wantErr error
	}{
		{"SAVE10", nil},
		{"save10", nil},
		{"", ErrCouponNotFound},
		{"MISSING", ErrCouponNotFound},
		{"PAUSED", ErrCouponInactive},
		{"OLD", ErrCouponExpired},
		{"SOON", ErrCouponExpired},
		{"BROKEN", ErrCouponMisconfigured},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := svc.Lookup(tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SAVE10", c.Code)
		})
	}
}

func TestCouponService_ValidateCoupon(t *testing.T) {
	svc := setupCouponServiceTest(t)

	res, err := svc.ValidateCoupon(context.Background(), "save10")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "SAVE10", res.Code)
	assert.Equal(t, 10.0, res.DiscountPercentage)

	res, err = svc.ValidateCoupon(context.Background(), "OLD")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "El cupón está vencido", res.Message)
}

func TestRemoteCouponValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":true,"coupon":"SAVE10","description":"10%","discountPercentage":10,"maxDiscount":100}`))
	}))
	defer srv.Close()

	client, err := coupon.NewClient(coupon.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	res, err := NewRemoteCouponValidator(client).ValidateCoupon(context.Background(), "save10")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "SAVE10", res.Code)
	require.NotNil(t, res.MaxDiscount)
	assert.Equal(t, 100.0, *res.MaxDiscount)

	srv.Close()
	_, err = NewRemoteCouponValidator(client).ValidateCoupon(context.Background(), "save10")
	assert.True(t, errors.Is(err, coupon.ErrNetworkError))
}
