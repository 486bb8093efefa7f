// Package dbtest opens throwaway sqlite databases carrying the clinic schema.
// The DDL mirrors pkg/migrate/migrations without the postgres-only pieces.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

var schema = []string{
	`CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	gender TEXT,
	phone TEXT,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX ux_users_email ON users (email)`,
	`CREATE TABLE roles (
	id INTEGER PRIMARY KEY,
	description TEXT NOT NULL UNIQUE,
	created_at DATETIME,
	updated_at DATETIME
)`,
	`INSERT INTO roles (id, description, created_at, updated_at) VALUES
	(1, 'dentist', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP),
	(2, 'patient', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	`CREATE TABLE user_roles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role_id INTEGER NOT NULL REFERENCES roles (id) ON DELETE RESTRICT,
	created_at DATETIME,
	updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX ux_user_roles_user_id ON user_roles (user_id)`,
	`CREATE TABLE services (
	id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	created_at DATETIME,
	updated_at DATETIME
)`,
	`CREATE TABLE appointments (
	id TEXT PRIMARY KEY,
	appointment_date DATETIME NOT NULL,
	patient_id TEXT NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
	dentist_id TEXT NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
	service_id TEXT NOT NULL REFERENCES services (id) ON DELETE RESTRICT,
	status TEXT NOT NULL DEFAULT 'pending',
	notes TEXT,
	created_at DATETIME,
	updated_at DATETIME
)`,
	`CREATE TABLE outbox_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload BLOB NOT NULL,
	created_at DATETIME,
	published_at DATETIME,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT
)`,
	`CREATE TABLE outbox_dlq (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL UNIQUE,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload_json BLOB NOT NULL,
	error_reason TEXT NOT NULL,
	error_message TEXT,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	failed_at DATETIME,
	created_at DATETIME
)`,
}

// Open returns a fresh in-memory database with foreign keys enforced. The pool
// is pinned to one connection so sqlite never reports a locked table.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// UserOption tweaks a seeded user before insert.
type UserOption func(*models.User)

// WithName overrides the seeded user's names.
func WithName(first, last string) UserOption {
	return func(u *models.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// WithGender sets the seeded user's gender.
func WithGender(gender string) UserOption {
	return func(u *models.User) {
		u.Gender = &gender
	}
}

// WithPasswordHash stores hash as the user's credential.
func WithPasswordHash(hash string) UserOption {
	return func(u *models.User) {
		u.PasswordHash = hash
	}
}

// SeedUser inserts an active user bound to role. A zero role leaves the user
// without a user_roles row.
func SeedUser(t testing.TB, conn *gorm.DB, email string, role enums.Role, opts ...UserOption) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(&user)
	}
	require.NoError(t, conn.Create(&user).Error)

	if role != 0 {
		require.NoError(t, conn.Create(&models.UserRole{
			ID:     uuid.New(),
			UserID: user.ID,
			RoleID: role.ID(),
		}).Error)
	}
	return user
}

// SeedService inserts a catalog entry.
func SeedService(t testing.TB, conn *gorm.DB, description string) models.Service {
	t.Helper()
	svc := models.Service{ID: uuid.New(), Description: description}
	require.NoError(t, conn.Create(&svc).Error)
	return svc
}

// SeedAppointment inserts an appointment directly, bypassing scheduling rules.
func SeedAppointment(t testing.TB, conn *gorm.DB, at time.Time, patientID, dentistID, serviceID uuid.UUID, status enums.AppointmentStatus) models.Appointment {
	t.Helper()
	appt := models.Appointment{
		ID:              uuid.New(),
		AppointmentDate: at.UTC(),
		PatientID:       patientID,
		DentistID:       dentistID,
		ServiceID:       serviceID,
		Status:          status,
	}
	require.NoError(t, conn.Create(&appt).Error)
	return appt
}
