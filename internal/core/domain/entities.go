package domain

// Role represents user role in the system
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleStaff      Role = "STAFF"
	RoleTechnician Role = "TECHNICIAN"
	RoleAdmin      Role = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// CanManageInventory reports whether the role may mutate items and
// approve borrow/return requests.
func (r Role) CanManageInventory() bool {
	return r == RoleStaff || r == RoleAdmin
}

// CanWorkMaintenance reports whether the role may progress maintenance records.
func (r Role) CanWorkMaintenance() bool {
	return r == RoleStaff || r == RoleTechnician || r == RoleAdmin
}
