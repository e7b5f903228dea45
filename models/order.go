package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status
const (
	OrderStatusPending       = "pending"
	OrderStatusInPreparation = "in_preparation"
	OrderStatusReady         = "ready"
	OrderStatusCompleted     = "completed"
	OrderStatusCancelled     = "cancelled"
)

// Payment method
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

type Order struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Number           string           `gorm:"type:varchar(36);uniqueIndex;not null" json:"number"`
	BuyerID          uint             `gorm:"not null;index" json:"buyer_id"`
	Buyer            User             `gorm:"foreignKey:BuyerID" json:"-"`
	StaffID          *uint            `gorm:"index" json:"staff_id,omitempty"`
	Subtotal         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount         decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total            decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod    string           `gorm:"type:varchar(20);not null" json:"payment_method"`
	CashTendered     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"cash_tendered,omitempty"`
	Change           decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"change"`
	Status           string           `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CustomerRewardID *uint            `json:"customer_reward_id,omitempty"`
	OrderItems       []OrderItem      `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
}
