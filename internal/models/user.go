package models

// Roles, from widest to narrowest scope. SUPER_ADMIN is the only role with a
// global (all-campus) scope; every other role is bound to one campus.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
	RoleStaff      = "STAFF"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// CampusID is 0 for SUPER_ADMIN (global scope).
	CampusID int `json:"campus_id"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTechnician, RoleStaff:
		return true
	}
	return false
}
