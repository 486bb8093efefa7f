package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

func newBufferedQueryLogger(slow time.Duration) (gormlogger.Interface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: logger.FormatJSON})
	return newQueryLogger(logg, slow), buf
}

func TestQueryLoggerReportsFailuresAndSlowQueries(t *testing.T) {
	ql, buf := newBufferedQueryLogger(time.Second)
	stmt := func() (string, int64) { return "SELECT 1", 0 }

	ql.Trace(context.Background(), time.Now(), stmt, nil)
	assert.Zero(t, buf.Len(), "fast successful queries are not logged")

	ql.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len(), "missing rows are not logged")

	ql.Trace(context.Background(), time.Now(), stmt, errors.New("relation does not exist"))
	assert.Contains(t, buf.String(), `"message":"db.query_failed"`)
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)

	buf.Reset()
	ql.Trace(context.Background(), time.Now().Add(-2*time.Second), stmt, nil)
	assert.Contains(t, buf.String(), `"message":"db.slow_query"`)
}

func TestQueryLoggerSilentMode(t *testing.T) {
	ql, buf := newBufferedQueryLogger(0)
	silent := ql.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	assert.Zero(t, buf.Len())

	assert.Equal(t, gormlogger.Discard, newQueryLogger(nil, 0))
}
