package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dentalclinic-backend/internal/services"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/metrics"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox"
	"github.com/angelmondragon/dentalclinic-backend/pkg/outbox/payloads"
)

const confirmedEventSavepoint = "appointment_confirmed_event"

// Service schedules, reschedules and lists appointments.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*AppointmentDTO, error)
	Get(ctx context.Context, id string) (*AppointmentDTO, error)
	Update(ctx context.Context, id string, input UpdateInput) (*AppointmentDTO, error)
	Delete(ctx context.Context, id string) error
	ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]AppointmentDTO, error)
	ListByDateAndUser(ctx context.Context, date, userID string) ([]AppointmentDTO, error)
}

type roleResolver interface {
	FindRoleForUser(ctx context.Context, id uuid.UUID) (enums.Role, bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (string, error)
}

// ServiceParams bundles the scheduler dependencies. Now defaults to
// time.Now and Outbox may be nil to disable confirmation events.
type ServiceParams struct {
	DB      *db.Client
	Roles   roleResolver
	Outbox  eventEmitter
	Metrics *metrics.SchedulingMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	db      *db.Client
	roles   roleResolver
	outbox  eventEmitter
	metrics *metrics.SchedulingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the appointment scheduler.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Roles == nil {
		return nil, fmt.Errorf("role resolver is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:      params.DB,
		roles:   params.Roles,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (dto *AppointmentDTO, err error) {
	defer s.observe("create", time.Now(), &err)

	if missing := missingCreateFields(input); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment date, patient id, dentist id and service id are required").
			WithDetails(map[string]any{"fields": missing}).
			WithReason(pkgerrors.ReasonMissingFields)
	}
	at, err := s.validateDate(input.Date)
	if err != nil {
		return nil, err
	}

	patientID, okPatient := parseID(input.PatientID)
	if !okPatient {
		return nil, notFound("patient")
	}
	dentistID, okDentist := parseID(input.DentistID)
	if !okDentist {
		return nil, notFound("dentist")
	}
	serviceID, okService := parseID(input.ServiceID)
	if !okService {
		return nil, notFound("service")
	}

	appt := models.Appointment{
		ID:              uuid.New(),
		AppointmentDate: at.UTC(),
		PatientID:       patientID,
		DentistID:       dentistID,
		ServiceID:       serviceID,
		Status:          enums.AppointmentStatusPending,
		Notes:           normalizeNotes(input.Notes),
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := lockParties(ctx, tx, dentistID, patientID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock appointment parties")
		}
		if err := ensureUser(ctx, tx, patientID, "patient"); err != nil {
			return err
		}
		if err := ensureUser(ctx, tx, dentistID, "dentist"); err != nil {
			return err
		}
		if err := ensureService(ctx, tx, serviceID); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, tx, ConflictQuery{
			ProposedTime: appt.AppointmentDate,
			PatientID:    patientID,
			DentistID:    dentistID,
		}); err != nil {
			return err
		}
		if err := NewRepository(tx).Create(ctx, &appt); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "patient, dentist, or service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create appointment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, appt.ID)
}

func (s *service) Get(ctx context.Context, id string) (*AppointmentDTO, error) {
	appointmentID, ok := parseID(id)
	if !ok {
		return nil, notFound("appointment")
	}
	return s.load(ctx, appointmentID)
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (dto *AppointmentDTO, err error) {
	defer s.observe("update", time.Now(), &err)

	appointmentID, ok := parseID(id)
	if !ok {
		return nil, notFound("appointment")
	}

	var newDate *time.Time
	if input.Date != nil {
		at, err := s.validateDate(*input.Date)
		if err != nil {
			return nil, err
		}
		utc := at.UTC()
		newDate = &utc
	}

	var newStatus *enums.AppointmentStatus
	if input.Status != nil {
		parsed, err := enums.ParseAppointmentStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of pending, confirmed, cancelled, completed").
				WithReason(pkgerrors.ReasonInvalidStatus)
		}
		newStatus = &parsed
	}

	var newServiceID *uuid.UUID
	if input.ServiceID != nil {
		parsed, ok := parseID(*input.ServiceID)
		if !ok {
			return nil, notFound("service")
		}
		newServiceID = &parsed
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		current, err := findForUpdate(ctx, tx, appointmentID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if newServiceID != nil && *newServiceID != current.ServiceID {
			if err := ensureService(ctx, tx, *newServiceID); err != nil {
				return err
			}
			updates["service_id"] = *newServiceID
		}

		confirming := false
		if newStatus != nil && *newStatus != current.Status {
			if !current.Status.CanTransitionTo(*newStatus) {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cannot move appointment from %s to %s", current.Status, *newStatus)).
					WithDetails(map[string]any{"from": current.Status, "to": *newStatus}).
					WithReason(pkgerrors.ReasonInvalidTransition)
			}
			updates["status"] = *newStatus
			confirming = *newStatus == enums.AppointmentStatusConfirmed
		}

		if newDate != nil {
			if err := lockParties(ctx, tx, current.DentistID, current.PatientID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock appointment parties")
			}
			if err := s.ensureFree(ctx, tx, ConflictQuery{
				ProposedTime: *newDate,
				PatientID:    current.PatientID,
				DentistID:    current.DentistID,
				ExcludeID:    &current.ID,
			}); err != nil {
				return err
			}
			updates["appointment_date"] = *newDate
		}

		if input.Notes != nil {
			updates["notes"] = normalizeNotes(input.Notes)
		}

		if err := repo.Update(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update appointment")
		}

		if confirming {
			confirmed := *current
			confirmed.Status = enums.AppointmentStatusConfirmed
			if newDate != nil {
				confirmed.AppointmentDate = *newDate
			}
			if newServiceID != nil {
				confirmed.ServiceID = *newServiceID
			}
			return s.emitConfirmed(ctx, tx, confirmed, input.Actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, appointmentID)
}

func (s *service) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	appointmentID, ok := parseID(id)
	if !ok {
		return notFound("appointment")
	}
	deleted, err := NewRepository(s.db.DB()).Delete(ctx, appointmentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete appointment")
	}
	if !deleted {
		return notFound("appointment")
	}
	return nil
}

func (s *service) validateDate(value string) (time.Time, error) {
	at, err := ParseAppointmentDate(value)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment date format").
			WithReason(pkgerrors.ReasonInvalidDate)
	}
	if !at.After(s.now()) {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "appointment date must be in the future").
			WithReason(pkgerrors.ReasonPastDate)
	}
	return at, nil
}

func (s *service) ensureFree(ctx context.Context, tx *gorm.DB, q ConflictQuery) error {
	conflict, err := CheckConflict(ctx, tx, q)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check scheduling conflict")
	}
	if conflict == nil {
		return nil
	}
	s.metrics.IncConflict(string(conflict.Party))
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("the %s already has an appointment within one hour of the requested time", conflict.Party)).
		WithDetails(conflict.Details()).
		WithReason(pkgerrors.ReasonSchedulingConflict)
}

// emitConfirmed records the confirmation event behind a savepoint. A failed
// emit is rolled back to the savepoint so the status change still commits.
func (s *service) emitConfirmed(ctx context.Context, tx *gorm.DB, appt models.Appointment, actor *Actor) error {
	if s.outbox == nil {
		return nil
	}
	eventType := string(enums.EventAppointmentConfirmed)
	ctx = s.withAppointment(ctx, appt.ID)

	if err := tx.SavePoint(confirmedEventSavepoint).Error; err != nil {
		s.logError(ctx, "appointment.confirmed_event.savepoint_failed", err)
		s.metrics.IncEventFailure(eventType)
		return nil
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventAppointmentConfirmed,
		AggregateType: enums.AggregateAppointment,
		AggregateID:   appt.ID,
		Version:       payloads.AppointmentConfirmedVersion,
		OccurredAt:    s.now().UTC(),
		Data: payloads.AppointmentConfirmedEvent{
			AppointmentID:   appt.ID,
			PatientID:       appt.PatientID,
			DentistID:       appt.DentistID,
			ServiceID:       appt.ServiceID,
			AppointmentDate: appt.AppointmentDate.UTC(),
			ConfirmedAt:     s.now().UTC(),
		},
	}
	if actor != nil && actor.UserID != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: actor.UserID}
		if actor.Role.IsValid() {
			event.Actor.Role = actor.Role.String()
		}
	}

	if _, err := s.outbox.Emit(ctx, tx, event); err != nil {
		if rbErr := tx.RollbackTo(confirmedEventSavepoint).Error; rbErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, rbErr, "rollback confirmation event")
		}
		s.logError(ctx, "appointment.confirmed_event.emit_failed", err)
		s.metrics.IncEventFailure(eventType)
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*AppointmentDTO, error) {
	appt, err := NewRepository(s.db.DB()).FindEnriched(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("appointment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
	}
	dto := toDTO(appt)
	return &dto, nil
}

func (s *service) observe(operation string, started time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	if errp != nil && *errp != nil {
		outcome = metrics.OutcomeRejected
		if pkgerrors.CodeOf(*errp) == pkgerrors.CodeInternal {
			outcome = metrics.OutcomeError
		}
	}
	s.metrics.Observe(operation, outcome, time.Since(started))
}

func (s *service) withAppointment(ctx context.Context, id uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithAppointmentID(ctx, id.String())
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}

func findForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("appointment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
	}
	return &appt, nil
}

func ensureUser(ctx context.Context, tx *gorm.DB, id uuid.UUID, label string) error {
	exists, err := users.NewRepository(tx).Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup "+label)
	}
	if !exists {
		return notFound(label)
	}
	return nil
}

func ensureService(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, err := services.NewRepository(tx).FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("service")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup service")
	}
	return nil
}

func missingCreateFields(input CreateInput) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"appointmentDate", input.Date},
		{"patientUserId", input.PatientID},
		{"dentistUserId", input.DentistID},
		{"serviceId", input.ServiceID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func parseID(value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFound(entity string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found").
		WithDetails(map[string]any{"entity": entity})
}
