package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Material string

const (
	MaterialGold     Material = "gold"
	MaterialSilver   Material = "silver"
	MaterialPlatinum Material = "platinum"
)

// MaterialLabels maps material codes to display names.
var MaterialLabels = map[Material]string{
	MaterialGold:     "Gold",
	MaterialSilver:   "Silver",
	MaterialPlatinum: "Platinum",
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Slug        string          `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"category"`
	Material    Material        `gorm:"type:VARCHAR(20);not null" json:"material"`
	Purity      uint            `gorm:"not null" json:"purity"` // e.g. 585 for gold
	Weight      float64         `gorm:"not null" json:"weight"` // grams
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	InStock     bool            `gorm:"default:true" json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}
