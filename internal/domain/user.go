package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
)

// User is the slice of the external identity directory this service reads:
// enough to resolve the staff search filter and display order owners.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the verified caller context supplied by the identity collaborator.
type Identity struct {
	OwnerID string
	Role    Role
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin
}
