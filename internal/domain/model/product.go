package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// デフォルトの容量表記
const DefaultProductSize = "50ml"

type Product struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string           `gorm:"type:varchar(200);not null" json:"name"`
	Description    string           `gorm:"type:text;not null" json:"description"`
	Price          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAtPrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"compare_at_price"`
	ImageURL       string           `gorm:"type:varchar(500);not null" json:"image_url"`
	Size           string           `gorm:"type:varchar(50);not null;default:'50ml'" json:"size"`
	Notes          string           `gorm:"type:varchar(300)" json:"notes"`
	CreatedAt      time.Time        `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
