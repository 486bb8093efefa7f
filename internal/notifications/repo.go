package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/repo"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// Repository loads the records a confirmation email is rendered from.
type Repository struct {
	repo.Base
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindAppointmentWithPatient loads an appointment together with its patient.
func (r *Repository) FindAppointmentWithPatient(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.DB(ctx).
		Preload("Patient").
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
