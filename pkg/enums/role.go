package enums

import (
	"fmt"
	"strings"
)

// Role is the closed set of clinic roles. The numeric values match the ids
// seeded into the roles table.
type Role int

const (
	RoleDentist Role = 1
	RolePatient Role = 2
)

var validRoles = []Role{
	RoleDentist,
	RolePatient,
}

// String returns the canonical role description.
func (r Role) String() string {
	switch r {
	case RoleDentist:
		return "dentist"
	case RolePatient:
		return "patient"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ID returns the roles table primary key for r.
func (r Role) ID() int {
	return int(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Roles returns every known role in id order.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// RoleFromID maps a roles table id onto the enumeration.
func RoleFromID(id int) (Role, error) {
	r := Role(id)
	if !r.IsValid() {
		return 0, fmt.Errorf("invalid role id %d", id)
	}
	return r, nil
}

// ParseRole converts a role description (case-insensitive) into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if candidate.String() == normalized {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid role %q", value)
}
