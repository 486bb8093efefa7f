package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// Appointment is a booked slot between a patient and a dentist for a service.
type Appointment struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AppointmentDate time.Time               `gorm:"column:appointment_date;not null"`
	PatientID       uuid.UUID               `gorm:"column:patient_id;type:uuid;not null"`
	DentistID       uuid.UUID               `gorm:"column:dentist_id;type:uuid;not null"`
	ServiceID       uuid.UUID               `gorm:"column:service_id;type:uuid;not null"`
	Status          enums.AppointmentStatus `gorm:"column:status;type:appointment_status;not null;default:pending"`
	Notes           *string                 `gorm:"column:notes"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	Patient *User    `gorm:"foreignKey:PatientID;references:ID"`
	Dentist *User    `gorm:"foreignKey:DentistID;references:ID"`
	Service *Service `gorm:"foreignKey:ServiceID;references:ID"`
}
