package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// MaxDescriptionLength bounds service descriptions.
const MaxDescriptionLength = 255

// ServiceDTO is the public projection of a catalog entry.
type ServiceDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServiceInput is the body accepted by create and update.
type ServiceInput struct {
	Description string `json:"description" validate:"required"`
}

func fromModel(s *models.Service) ServiceDTO {
	return ServiceDTO{
		ID:          s.ID,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
