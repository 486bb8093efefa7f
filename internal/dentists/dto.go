package dentists

import (
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

// CreateDentistRequest is the body accepted when onboarding a dentist.
type CreateDentistRequest struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

// UpdateDentistRequest is a partial update. Nil fields are left unchanged.
type UpdateDentistRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// ListQuery pages through the dentist directory.
type ListQuery struct {
	Page   pagination.Params
	Search string
}
