package appointments

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/metrics"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox"
)

var fixedNow = time.Date(2030, time.March, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	conn     *gorm.DB
	svc      Service
	registry *prometheus.Registry
	patient  models.User
	dentist  models.User
	service  models.Service
}

type fixtureOption func(*ServiceParams)

func withEmitter(e eventEmitter) fixtureOption {
	return func(p *ServiceParams) { p.Outbox = e }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "appointments-test", Output: io.Discard})
	registry := prometheus.NewRegistry()

	params := ServiceParams{
		DB:      db.Wrap(conn),
		Roles:   users.NewRepository(conn),
		Outbox:  outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics: metrics.NewSchedulingMetrics(registry),
		Logger:  logg,
		Now:     func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)

	return &fixture{
		conn:     conn,
		svc:      svc,
		registry: registry,
		patient:  dbtest.SeedUser(t, conn, "patient@example.com", enums.RolePatient, dbtest.WithName("Paula", "Patient")),
		dentist:  dbtest.SeedUser(t, conn, "dentist@example.com", enums.RoleDentist, dbtest.WithName("Diego", "Dentist")),
		service:  dbtest.SeedService(t, conn, "Cleaning"),
	}
}

func (f *fixture) seed(t *testing.T, at time.Time, status enums.AppointmentStatus) models.Appointment {
	t.Helper()
	return dbtest.SeedAppointment(t, f.conn, at, f.patient.ID, f.dentist.ID, f.service.ID, status)
}

func (f *fixture) createInput(at time.Time) CreateInput {
	return CreateInput{
		Date:      at.Format(time.RFC3339),
		PatientID: f.patient.ID.String(),
		DentistID: f.dentist.ID.String(),
		ServiceID: f.service.ID.String(),
	}
}

func (f *fixture) outboxCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	return count
}

// metricValue reads one counter sample from the fixture registry.
func (f *fixture) metricValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, pair := range m.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func at(hour, minute, second int) time.Time {
	return time.Date(2030, time.March, 10, hour, minute, second, 0, time.UTC)
}

func strPtr(v string) *string {
	return &v
}
