package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the unit of measure an ingredient is stocked in.
type Unit string

const (
	UnitPiece      Unit = "piece"
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
)

// Discrete reports whether the unit can only be consumed in whole amounts.
func (u Unit) Discrete() bool {
	return u == UnitPiece
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitPiece, UnitGram, UnitKilogram, UnitMilliliter, UnitLiter:
		return true
	}
	return false
}

type Ingredient struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	SKU              string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name             string          `gorm:"type:varchar(100);not null" json:"name"`
	StockOnHand      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock_on_hand"`
	MinimumThreshold decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"minimum_threshold"`
	Unit             Unit            `gorm:"type:varchar(20);not null" json:"unit"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

// RecipeLine is one ingredient requirement for one unit of a finished good.
type RecipeLine struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	FinishedGoodID  uint            `gorm:"not null;uniqueIndex:idx_recipe_good_ingredient" json:"finished_good_id"`
	FinishedGood    FinishedGood    `gorm:"foreignKey:FinishedGoodID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	IngredientID    uint            `gorm:"not null;uniqueIndex:idx_recipe_good_ingredient" json:"ingredient_id"`
	Ingredient      Ingredient      `gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"ingredient"`
	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity_per_unit"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}
