package auth

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Identity adalah hasil verifikasi token; input "caller identity + role"
// untuk pipeline checkout.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Phone  string
	Role   Role
}
