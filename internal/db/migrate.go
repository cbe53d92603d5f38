package db

import (
	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the service owns
func Models() []interface{} {
	return []interface{}{
		&model.Product{},
		&model.Coupon{},
		&model.CartBlob{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts the starter catalog and coupons into an empty database
func Seed() error {
	return SeedWith(DB)
}

func SeedWith(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	if err := seedProducts(db); err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}
	if err := seedCoupons(db); err != nil {
		logger.Error("Failed to seed coupons", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := []model.Product{
		{Name: "Manzanilla orgánica", Price: 12900, Weight: 0.1, Presentation: "Bolsa 100 g", Category: model.CategoryTeas, StockQuantity: 40},
		{Name: "Té verde sencha", Price: 18500, Weight: 0.15, Presentation: "Lata 150 g", Category: model.CategoryTeas, StockQuantity: 25},
		{Name: "Cúrcuma en polvo", Price: 9800, Weight: 0.25, Presentation: "Frasco 250 g", Category: model.CategoryHerbs, StockQuantity: 60},
		{Name: "Moringa en cápsulas", Price: 42000, Weight: 0.12, Presentation: "Frasco 60 cápsulas", Category: model.CategorySupplements, StockQuantity: 15},
		{Name: "Aceite de coco virgen", Price: 31000, Weight: 0.5, Presentation: "Frasco 500 ml", Category: model.CategoryOils, StockQuantity: 20},
		{Name: "Miel de abejas pura", Price: 24000, Weight: 0.7, Presentation: "Frasco 500 g", Category: model.CategoryPantry, StockQuantity: 5},
	}
	return db.Create(&products).Error
}

func seedCoupons(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Coupon{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Coupons already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	maxDiscount := 20000.0
	coupons := []model.Coupon{
		{Code: "BIENVENIDA10", Description: "10% en tu primera compra", DiscountPercentage: 10, MaxDiscount: &maxDiscount, Active: true},
		{Code: "NATURAL15", Description: "15% sin tope", DiscountPercentage: 15, Active: true},
	}
	return db.Create(&coupons).Error
}
