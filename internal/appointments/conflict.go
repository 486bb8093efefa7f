package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// ConflictWindow is how close two appointments sharing a party may be.
const ConflictWindow = time.Hour

// Party names which side of a proposed appointment collided.
type Party string

const (
	PartyDentist Party = "dentist"
	PartyPatient Party = "patient"
	PartyBoth    Party = "both"
)

// ConflictQuery describes a proposed slot. ExcludeID is set when rescheduling
// an existing appointment.
type ConflictQuery struct {
	ProposedTime time.Time
	PatientID    uuid.UUID
	DentistID    uuid.UUID
	ExcludeID    *uuid.UUID
}

// Conflict is the earliest existing appointment that blocks a proposal.
type Conflict struct {
	AppointmentID   uuid.UUID
	AppointmentDate time.Time
	PatientID       uuid.UUID
	DentistID       uuid.UUID
	Party           Party
}

// Details renders the conflict for an error payload.
func (c *Conflict) Details() map[string]any {
	return map[string]any{
		"appointmentId":   c.AppointmentID,
		"appointmentDate": c.AppointmentDate.UTC().Format(time.RFC3339),
		"patientUserId":   c.PatientID,
		"dentistUserId":   c.DentistID,
		"party":           string(c.Party),
	}
}

// Predicates returns the conditions that define a conflict for q.
func (q ConflictQuery) Predicates() []Predicate {
	return []Predicate{
		StatusNot{Status: enums.AppointmentStatusCancelled},
		WindowAround(q.ProposedTime, ConflictWindow),
		PartyMatch{DentistID: q.DentistID, PatientID: q.PatientID},
		ExcludeID{ID: q.ExcludeID},
	}
}

// CheckConflict returns the earliest non-cancelled appointment within an hour
// of the proposed time that shares the dentist or the patient, or nil when the
// slot is free. Ties on date resolve by id.
func CheckConflict(ctx context.Context, tx *gorm.DB, q ConflictQuery) (*Conflict, error) {
	if tx == nil {
		return nil, errors.New("database handle required")
	}
	var rows []models.Appointment
	err := tx.WithContext(ctx).
		Model(&models.Appointment{}).
		Scopes(Scope(q.Predicates()...)).
		Order("appointments.appointment_date ASC").
		Order("appointments.id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	hit := rows[0]
	return &Conflict{
		AppointmentID:   hit.ID,
		AppointmentDate: hit.AppointmentDate,
		PatientID:       hit.PatientID,
		DentistID:       hit.DentistID,
		Party:           collidingParty(hit, q),
	}, nil
}

func collidingParty(hit models.Appointment, q ConflictQuery) Party {
	dentist := q.DentistID != uuid.Nil && hit.DentistID == q.DentistID
	patient := q.PatientID != uuid.Nil && hit.PatientID == q.PatientID
	switch {
	case dentist && patient:
		return PartyBoth
	case dentist:
		return PartyDentist
	default:
		return PartyPatient
	}
}
