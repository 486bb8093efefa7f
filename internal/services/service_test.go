package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

func TestCatalogCRUD(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	cleaning, err := svc.Create(ctx, ServiceInput{Description: " Cleaning "})
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", cleaning.Description)
	_, err = svc.Create(ctx, ServiceInput{Description: "Braces"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Braces", list[0].Description)

	updated, err := svc.Update(ctx, cleaning.ID, ServiceInput{Description: "Deep cleaning"})
	require.NoError(t, err)
	assert.Equal(t, "Deep cleaning", updated.Description)

	require.NoError(t, svc.Delete(ctx, cleaning.ID))
	_, err = svc.Get(ctx, cleaning.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCatalogValidation(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, ServiceInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ReasonMissingFields, pkgerrors.As(err).Reason())

	_, err = svc.Create(ctx, ServiceInput{Description: strings.Repeat("a", MaxDescriptionLength+1)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Update(ctx, uuid.New(), ServiceInput{Description: "x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	err = svc.Delete(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteReferencedServiceConflicts(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	service := dbtest.SeedService(t, conn, "Extraction")
	patient := dbtest.SeedUser(t, conn, "p@example.com", enums.RolePatient)
	dentist := dbtest.SeedUser(t, conn, "d@example.com", enums.RoleDentist)
	dbtest.SeedAppointment(t, conn, time.Now().Add(24*time.Hour), patient.ID, dentist.ID, service.ID, enums.AppointmentStatusPending)

	err = svc.Delete(context.Background(), service.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

type racingStore struct {
	*Repository
}

func (r racingStore) CountAppointments(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (r racingStore) Delete(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("FOREIGN KEY constraint failed")
}

func TestDeleteTranslatesForeignKeyViolation(t *testing.T) {
	svc, err := NewService(racingStore{Repository: NewRepository(dbtest.Open(t))})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}
