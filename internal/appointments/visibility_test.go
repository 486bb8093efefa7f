package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

func TestListForRequesterDentist(t *testing.T) {
	f := newFixture(t)
	otherDentist := dbtest.SeedUser(t, f.conn, "other-dentist@example.com", enums.RoleDentist)

	late := f.seed(t, at(15, 0, 0), enums.AppointmentStatusPending)
	early := f.seed(t, at(9, 0, 0), enums.AppointmentStatusCancelled)
	dbtest.SeedAppointment(t, f.conn, at(12, 0, 0), f.patient.ID, otherDentist.ID, f.service.ID, enums.AppointmentStatusPending)

	list, err := f.svc.ListForRequester(context.Background(), f.dentist.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].AppointmentID)
	assert.Equal(t, late.ID, list[1].AppointmentID)
	for _, item := range list {
		assert.Equal(t, f.dentist.ID, item.DentistID)
		require.NotNil(t, item.Patient)
		assert.Equal(t, f.patient.Email, item.Patient.Email)
		require.NotNil(t, item.Service)
	}
}

func TestListForRequesterPatient(t *testing.T) {
	f := newFixture(t)
	otherPatient := dbtest.SeedUser(t, f.conn, "other-patient@example.com", enums.RolePatient)
	mine := f.seed(t, at(9, 0, 0), enums.AppointmentStatusPending)
	dbtest.SeedAppointment(t, f.conn, at(12, 0, 0), otherPatient.ID, f.dentist.ID, f.service.ID, enums.AppointmentStatusPending)

	list, err := f.svc.ListForRequester(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].AppointmentID)
}

func TestListProjectsPartyGender(t *testing.T) {
	f := newFixture(t)
	patient := dbtest.SeedUser(t, f.conn, "gendered@example.com", enums.RolePatient, dbtest.WithGender("female"))
	dbtest.SeedAppointment(t, f.conn, at(9, 0, 0), patient.ID, f.dentist.ID, f.service.ID, enums.AppointmentStatusPending)

	list, err := f.svc.ListForRequester(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Patient)
	require.NotNil(t, list[0].Patient.Gender)
	assert.Equal(t, "female", *list[0].Patient.Gender)
	require.NotNil(t, list[0].Dentist)
	assert.Nil(t, list[0].Dentist.Gender)
}

func TestListForRequesterEmpty(t *testing.T) {
	f := newFixture(t)
	list, err := f.svc.ListForRequester(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListForRequesterRoleErrors(t *testing.T) {
	f := newFixture(t)
	roleless := dbtest.SeedUser(t, f.conn, "roleless@example.com", 0)

	_, err := f.svc.ListForRequester(context.Background(), roleless.ID)
	requireReason(t, err, pkgerrors.CodeValidation, pkgerrors.ReasonInvalidRole)

	_, err = f.svc.ListForRequester(context.Background(), uuid.New())
	requireReason(t, err, pkgerrors.CodeNotFound, "")
}

func TestListByDateAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	startOfDay := f.seed(t, at(0, 0, 0), enums.AppointmentStatusPending)
	endOfDay := f.seed(t, time.Date(2030, time.March, 10, 23, 59, 59, 999_500_000, time.UTC), enums.AppointmentStatusPending)
	f.seed(t, time.Date(2030, time.March, 11, 0, 0, 0, 0, time.UTC), enums.AppointmentStatusPending)
	f.seed(t, time.Date(2030, time.March, 9, 23, 59, 59, 0, time.UTC), enums.AppointmentStatusPending)

	asPatient, err := f.svc.ListByDateAndUser(ctx, "2030-03-10", f.patient.ID.String())
	require.NoError(t, err)
	require.Len(t, asPatient, 2)
	assert.Equal(t, startOfDay.ID, asPatient[0].AppointmentID)
	assert.Equal(t, endOfDay.ID, asPatient[1].AppointmentID)

	asDentist, err := f.svc.ListByDateAndUser(ctx, "2030-03-10", f.dentist.ID.String())
	require.NoError(t, err)
	assert.Len(t, asDentist, 2)
}

func TestListByDateAndUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListByDateAndUser(ctx, "", f.patient.ID.String())
	requireReason(t, err, pkgerrors.CodeValidation, pkgerrors.ReasonMissingFields)

	_, err = f.svc.ListByDateAndUser(ctx, "2030-03-10", " ")
	requireReason(t, err, pkgerrors.CodeValidation, pkgerrors.ReasonMissingFields)

	_, err = f.svc.ListByDateAndUser(ctx, "10-03-2030", f.patient.ID.String())
	requireReason(t, err, pkgerrors.CodeValidation, pkgerrors.ReasonInvalidDate)

	_, err = f.svc.ListByDateAndUser(ctx, "2030-03-10", "user-1")
	requireReason(t, err, pkgerrors.CodeValidation, "")
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2030-03-10")
	require.NoError(t, err)
	assert.Equal(t, at(0, 0, 0), start)
	assert.Equal(t, time.Date(2030, time.March, 11, 0, 0, 0, 0, time.UTC), end)

	_, _, err = DayBounds("2030-3-10")
	require.Error(t, err)
}

func TestParseAppointmentDate(t *testing.T) {
	for _, value := range []string{
		"2030-03-10T10:00:00Z",
		"2030-03-10T05:00:00-05:00",
		"2030-03-10T10:00:00.000Z",
		"2030-03-10T10:00:00",
		"2030-03-10 10:00:00",
	} {
		got, err := ParseAppointmentDate(value)
		require.NoError(t, err, value)
		assert.True(t, got.Equal(at(10, 0, 0)), value)
	}

	_, err := ParseAppointmentDate("March 10")
	require.Error(t, err)
}
