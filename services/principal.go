package services

import (
	"fmt"

	"github.com/yeremiapane/bakery-app/models"
)

// Principal is the already-authenticated actor of a request. It is a closed
// set: Customer or Staff.
type Principal interface {
	UserID() uint
	principal()
}

// Customer buys for themselves and takes part in the reward program.
type Customer struct {
	ID uint
}

// Staff records in-store sales attributed to the walk-in customer.
type Staff struct {
	ID uint
}

func (c Customer) UserID() uint { return c.ID }
func (Customer) principal()     {}

func (s Staff) UserID() uint { return s.ID }
func (Staff) principal()     {}

// PrincipalFromRole maps a resolved token role onto a Principal.
func PrincipalFromRole(userID uint, role string) (Principal, error) {
	if userID == 0 {
		return nil, ErrInvalidArgument("missing user id")
	}
	switch role {
	case models.RoleCustomer:
		return Customer{ID: userID}, nil
	case models.RoleCashier, models.RoleAdmin:
		return Staff{ID: userID}, nil
	default:
		return nil, ErrInvalidArgument("unknown role %q", role)
	}
}

func describePrincipal(p Principal) string {
	switch v := p.(type) {
	case Customer:
		return fmt.Sprintf("customer:%d", v.ID)
	case Staff:
		return fmt.Sprintf("staff:%d", v.ID)
	default:
		return "unknown"
	}
}
