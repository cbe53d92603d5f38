package model

import (
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Code               string         `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Description        string         `json:"description"`
	DiscountPercentage float64        `gorm:"not null" json:"discount_percentage"`
	MaxDiscount        *float64       `json:"max_discount,omitempty"`
	Active             bool           `gorm:"not null;default:true" json:"active"`
	StartsAt           *time.Time     `json:"starts_at,omitempty"`
	ExpiresAt          *time.Time     `json:"expires_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// InWindow reports whether now falls inside the coupon's validity window
func (c Coupon) InWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return true
}
