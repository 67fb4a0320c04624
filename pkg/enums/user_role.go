package enums

import "fmt"

// UserRole partitions the marketplace's principals.
type UserRole string

const (
	UserRoleCustomer  UserRole = "customer"
	UserRoleVendor    UserRole = "vendor"
	UserRoleAdmin     UserRole = "admin"
	UserRoleLogistics UserRole = "logistics"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleVendor,
	UserRoleAdmin,
	UserRoleLogistics,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
