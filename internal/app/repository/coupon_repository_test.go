package repository

import (
	"testing"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCouponRepository_FindByCode(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewCouponRepository(testDB)
	require.NoError(t, repo.Create(&model.Coupon{Code: " save10 ", DiscountPercentage: 10, Active: true}))

	found, err := repo.FindByCode("Save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", found.Code)
	assert.Equal(t, 10.0, found.DiscountPercentage)

	_, err = repo.FindByCode("NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
