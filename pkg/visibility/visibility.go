package visibility

import (
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	"github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

// Scope names the appointment participant a requester is matched against.
type Scope string

const (
	ScopeDentist Scope = "dentist"
	ScopePatient Scope = "patient"
)

// AppointmentScope decides which appointments a requester with role may
// list. hasRole is false when the user has no role binding at all.
func AppointmentScope(role enums.Role, hasRole bool) (Scope, error) {
	if !hasRole {
		return "", invalidRole("user role not found")
	}
	switch role {
	case enums.RoleDentist:
		return ScopeDentist, nil
	case enums.RolePatient:
		return ScopePatient, nil
	default:
		return "", invalidRole("invalid user role")
	}
}

func invalidRole(message string) error {
	return errors.New(errors.CodeValidation, message).WithReason(errors.ReasonInvalidRole)
}
