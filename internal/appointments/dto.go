package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// CreateInput is the body of a create request. Ids arrive as raw strings so
// malformed values surface as not found rather than decode failures.
type CreateInput struct {
	Date      string  `json:"appointmentDate"`
	PatientID string  `json:"patientUserId"`
	DentistID string  `json:"dentistUserId"`
	ServiceID string  `json:"serviceId"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateInput carries a partial update. Nil fields keep their stored values.
type UpdateInput struct {
	Date      *string `json:"appointmentDate,omitempty"`
	Status    *string `json:"status,omitempty"`
	ServiceID *string `json:"serviceId,omitempty"`
	Notes     *string `json:"notes,omitempty"`

	Actor *Actor `json:"-"`
}

// Actor is the authenticated caller behind a change.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// PartyDTO projects a patient or dentist without credentials.
type PartyDTO struct {
	UserID    uuid.UUID `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
}

// ServiceRef projects the booked service.
type ServiceRef struct {
	ServiceID   uuid.UUID `json:"serviceId"`
	Description string    `json:"description"`
}

// AppointmentDTO is the enriched appointment returned by every read.
type AppointmentDTO struct {
	AppointmentID   uuid.UUID               `json:"appointmentId"`
	AppointmentDate time.Time               `json:"appointmentDate"`
	PatientID       uuid.UUID               `json:"patientUserId"`
	DentistID       uuid.UUID               `json:"dentistUserId"`
	ServiceID       uuid.UUID               `json:"serviceId"`
	Notes           *string                 `json:"notes"`
	Status          enums.AppointmentStatus `json:"status"`
	Patient         *PartyDTO               `json:"patient"`
	Dentist         *PartyDTO               `json:"dentist"`
	Service         *ServiceRef             `json:"service"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// DeleteResult acknowledges a hard delete.
type DeleteResult struct {
	Deleted bool      `json:"deleted"`
	ID      uuid.UUID `json:"id"`
}

func toDTO(a *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		AppointmentID:   a.ID,
		AppointmentDate: a.AppointmentDate.UTC(),
		PatientID:       a.PatientID,
		DentistID:       a.DentistID,
		ServiceID:       a.ServiceID,
		Notes:           a.Notes,
		Status:          a.Status,
		Patient:         toParty(a.Patient),
		Dentist:         toParty(a.Dentist),
		Service:         toServiceRef(a.Service),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toDTOs(rows []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out
}

func toParty(u *models.User) *PartyDTO {
	if u == nil {
		return nil
	}
	return &PartyDTO{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Gender:    u.Gender,
	}
}

func toServiceRef(s *models.Service) *ServiceRef {
	if s == nil {
		return nil
	}
	return &ServiceRef{ServiceID: s.ID, Description: s.Description}
}
