package payloads

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentConfirmedVersion is the schema version of AppointmentConfirmedEvent.
const AppointmentConfirmedVersion = 1

// AppointmentConfirmedEvent asks the notification worker to tell the patient
// that their appointment was confirmed.
type AppointmentConfirmedEvent struct {
	AppointmentID   uuid.UUID `json:"appointmentId"`
	PatientID       uuid.UUID `json:"patientId"`
	DentistID       uuid.UUID `json:"dentistId"`
	ServiceID       uuid.UUID `json:"serviceId"`
	AppointmentDate time.Time `json:"appointmentDate"`
	ConfirmedAt     time.Time `json:"confirmedAt"`
}
