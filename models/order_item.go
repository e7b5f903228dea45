package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderItem is frozen at sale time; later price changes never touch it.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order          Order             `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FinishedGoodID uint              `gorm:"not null" json:"finished_good_id"`
	SizeOptionID   *uint             `json:"size_option_id,omitempty"`
	Name           string            `gorm:"type:varchar(100);not null" json:"name"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Customization  datatypes.JSONMap `json:"customization"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
}
