package model

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryHerbs       ProductCategory = "herbs"
	CategoryTeas        ProductCategory = "teas"
	CategorySupplements ProductCategory = "supplements"
	CategoryOils        ProductCategory = "oils"
	CategoryPantry      ProductCategory = "pantry"
)

type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	Weight        float64         `json:"weight"`       // kg, for shipping estimates
	Presentation  string          `json:"presentation"` // package format, e.g. "Frasco 250 g"
	Category      ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// CartKey is the product identifier used inside persisted carts
func (p Product) CartKey() string {
	return strconv.FormatUint(uint64(p.ID), 10)
}
