package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinishedGood is a sellable product assembled from ingredients through its recipe.
type FinishedGood struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SKU         string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	StockOnHand int             `gorm:"not null;default:0" json:"stock_on_hand"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// SizeOption scales a recipe and the sale price for non-default product sizes.
type SizeOption struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Factor     decimal.Decimal `gorm:"type:decimal(6,3);not null;default:1" json:"factor"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_delta"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}
