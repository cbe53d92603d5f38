package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/app/service"
	"github.com/verdantia/storefront-backend/internal/db"
)

func setupProductControllerTest(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	require.NoError(t, db.SeedWith(testDB))

	ctrl := NewProductController(service.NewProductService(repository.NewProductRepository(testDB)))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/products", ctrl.GetProducts)
	router.GET("/products/:id", ctrl.GetProductByID)
	return router
}

func TestProductController_GetProducts(t *testing.T) {
	router := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?category=oils", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []model.Product `json:"products"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, model.CategoryOils, resp.Products[0].Category)
}

func TestProductController_GetProductByID(t *testing.T) {
	router := setupProductControllerTest(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/products/1", http.StatusOK},
		{"/products/9999", http.StatusNotFound},
		{"/products/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
