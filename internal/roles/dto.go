package roles

import (
	"time"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// MaxDescriptionLength bounds role and catalog descriptions.
const MaxDescriptionLength = 255

// RoleDTO is the public projection of a roles row.
type RoleDTO struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoleInput is the body accepted by create and update.
type RoleInput struct {
	Description string `json:"description" validate:"required"`
}

func fromModel(r *models.Role) RoleDTO {
	return RoleDTO{
		ID:          r.ID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
