package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reward rule type
const (
	RewardPercentage = "percentage"
	RewardFixed      = "fixed"
)

// Customer reward state
const (
	RewardStateActive   = "active"
	RewardStateRedeemed = "redeemed"
)

type RewardRule struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"`
	Value           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	MinimumPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null;index" json:"minimum_purchase"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// CustomerReward is a granted instance of a RewardRule.
//
// ActiveCustomerID mirrors CustomerID while the reward is active and is NULL once
// redeemed, so the unique index allows a single active reward per customer.
type CustomerReward struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CustomerID       uint       `gorm:"not null;index" json:"customer_id"`
	Customer         User       `gorm:"foreignKey:CustomerID" json:"-"`
	RuleID           uint       `gorm:"not null" json:"rule_id"`
	Rule             RewardRule `gorm:"foreignKey:RuleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"rule"`
	State            string     `gorm:"type:varchar(20);not null;default:'active'" json:"state"`
	ActiveCustomerID *uint      `gorm:"uniqueIndex" json:"-"`
	RedeemedAt       *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}
