package model

import "time"

// CartBlob is one persisted cart snapshot keyed by its namespaced session
// key. Data holds the JSON document verbatim.
type CartBlob struct {
	Key       string    `gorm:"column:cart_key;primarykey;size:191" json:"key"`
	Data      string    `gorm:"type:text;not null" json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (CartBlob) TableName() string {
	return "cart_blobs"
}
