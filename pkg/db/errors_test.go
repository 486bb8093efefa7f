package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"}

	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), ""))
	assert.True(t, IsUniqueViolation(pgErr, "ux_users_email"))
	assert.False(t, IsUniqueViolation(pgErr, "ux_other"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestAsPGErrorNormalizesDrivers(t *testing.T) {
	fromPgx, ok := AsPGError(fmt.Errorf("create: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_dentists_license",
		TableName:      "dentists",
	}))
	assert.True(t, ok)
	assert.Equal(t, "ux_dentists_license", fromPgx.Constraint)
	assert.Equal(t, "dentists", fromPgx.Table)

	fromPq, ok := AsPGError(&pq.Error{Code: "23503", Table: "appointments", Detail: "still referenced"})
	assert.True(t, ok)
	assert.Equal(t, "23503", fromPq.Code)
	assert.Equal(t, "still referenced", fromPq.Detail)

	_, ok = AsPGError(errors.New("plain"))
	assert.False(t, ok)
}
