package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/repo"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// partyColumns limits the preloaded user rows to what the projections show.
var partyColumns = []string{"id", "first_name", "last_name", "email", "phone", "gender"}

// Repository persists appointments.
type Repository struct {
	repo.Base
}

// NewRepository binds an appointments repository to conn, which may be a
// transaction.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.AppointmentDate = appt.AppointmentDate.UTC()
	return r.DB(ctx).Omit("Patient", "Dentist", "Service").Create(appt).Error
}

// FindByID loads a bare appointment row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.DB(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindEnriched loads an appointment with its parties and service.
func (r *Repository) FindEnriched(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.enriched(ctx).First(&appt, "appointments.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// Update writes the changed columns of an appointment.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(updates).Error
}

// Delete hard deletes an appointment and reports whether a row matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.DeleteByID(ctx, &models.Appointment{}, id)
}

// ListWhere returns enriched appointments matching preds in ascending date
// order.
func (r *Repository) ListWhere(ctx context.Context, preds ...Predicate) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.enriched(ctx).
		Scopes(Scope(preds...)).
		Order("appointments.appointment_date ASC").
		Order("appointments.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForUserBetween returns appointments where userID is either party within
// [start, end).
func (r *Repository) ListForUserBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Appointment, error) {
	return r.ListWhere(ctx,
		PartyMatch{DentistID: userID, PatientID: userID},
		DayRange{Start: start, End: end},
	)
}

func (r *Repository) enriched(ctx context.Context) *gorm.DB {
	selectParty := func(tx *gorm.DB) *gorm.DB { return tx.Select(partyColumns) }
	return r.DB(ctx).
		Model(&models.Appointment{}).
		Preload("Patient", selectParty).
		Preload("Dentist", selectParty).
		Preload("Service")
}
