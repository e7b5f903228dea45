package models

import (
	"time"

	"gorm.io/datatypes"
)

// CartItem lives only until checkout or an explicit clear.
type CartItem struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;index" json:"user_id"`
	FinishedGoodID uint              `gorm:"not null" json:"finished_good_id"`
	FinishedGood   FinishedGood      `gorm:"foreignKey:FinishedGoodID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"finished_good"`
	SizeOptionID   *uint             `json:"size_option_id,omitempty"`
	SizeOption     *SizeOption       `gorm:"foreignKey:SizeOptionID;references:ID" json:"size_option,omitempty"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	Customization  datatypes.JSONMap `json:"customization"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}
