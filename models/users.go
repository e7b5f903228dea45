package models

import "time"

const (
	RoleCustomer = "customer"
	RoleCashier  = "cashier"
	RoleAdmin    = "admin"
)

// WalkInEmail identifies the placeholder customer that in-store sales are attributed to.
const WalkInEmail = "walk-in@bakery.local"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Role      string    `gorm:"type:varchar(20); not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
