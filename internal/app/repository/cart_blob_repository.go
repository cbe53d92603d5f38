package repository

import (
	"time"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartBlobRepository interface {
	Get(key string) (*model.CartBlob, error)
	Upsert(key string, data []byte) error
	Delete(key string) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type cartBlobRepository struct {
	db *gorm.DB
}

func NewCartBlobRepository(db *gorm.DB) CartBlobRepository {
	return &cartBlobRepository{db: db}
}

func (r *cartBlobRepository) Get(key string) (*model.CartBlob, error) {
	var blob model.CartBlob
	if err := r.db.Where("cart_key = ?", key).First(&blob).Error; err != nil {
		return nil, err
	}
	return &blob, nil
}

func (r *cartBlobRepository) Upsert(key string, data []byte) error {
	blob := model.CartBlob{Key: key, Data: string(data)}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		logger.Error("Failed to upsert cart blob", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

func (r *cartBlobRepository) Delete(key string) error {
	if err := r.db.Where("cart_key = ?", key).Delete(&model.CartBlob{}).Error; err != nil {
		logger.Error("Failed to delete cart blob", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

// DeleteOlderThan removes carts untouched since cutoff and reports how many went.
func (r *cartBlobRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", cutoff).Delete(&model.CartBlob{})
	if result.Error != nil {
		logger.Error("Failed to purge stale cart blobs", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}

	logger.Info("Purged stale cart blobs", map[string]interface{}{
		"cutoff":  cutoff,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
