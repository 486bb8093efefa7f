package appointments

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/dbtest"
)

func TestAdvisoryKeysSortedAndDistinct(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	keys := advisoryKeys(a, b, a, uuid.Nil)
	require.Len(t, keys, 2)
	assert.Less(t, keys[0], keys[1])
	assert.Equal(t, keys, advisoryKeys(b, a))
	assert.Equal(t, advisoryKey(a), advisoryKey(a))
}

func TestLockPartiesPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	dentist, patient := uuid.New(), uuid.New()
	keys := advisoryKeys(dentist, patient)
	for _, key := range keys {
		mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
			WithArgs(key).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, lockParties(context.Background(), conn, patient, dentist))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockPartiesSamePartyLocksOnce(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(advisoryKey(id)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, lockParties(context.Background(), conn, id, id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockPartiesSqliteNoop(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, lockParties(context.Background(), conn, uuid.New(), uuid.New()))
}
