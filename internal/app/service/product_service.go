package service

import (
	"errors"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type ProductListOptions struct {
	Category *model.ProductCategory
	Search   string
	InStock  bool
	Page     int
	PageSize int
}

type ProductService interface {
	GetProduct(id uint) (*model.Product, error)
	ListProducts(opts ProductListOptions) ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	products, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Category: opts.Category,
		Search:   opts.Search,
		InStock:  opts.InStock,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Info("Products listed", map[string]interface{}{
		"count":     len(products),
		"page":      page,
		"page_size": pageSize,
	})
	return products, nil
}
