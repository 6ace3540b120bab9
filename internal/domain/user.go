package domain

import "time"

// UserRole enumerates account roles. Roles are immutable after creation.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleAdmin      UserRole = "ADMIN"
	RoleTechnician UserRole = "TECHNICIAN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleTechnician:
		return true
	}
	return false
}

// User is the domain model for all accounts: students, admins, technicians.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          UserRole
	StudentNumber *string
	Department    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
