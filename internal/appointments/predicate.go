package appointments

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// Predicate is one typed condition of an appointment query. A predicate that
// renders an empty clause is skipped.
type Predicate interface {
	Clause() (string, []any)
}

// TimeWindow matches appointments whose date lies in [Start, End], both ends
// inclusive.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// WindowAround returns the window of radius on either side of at.
func WindowAround(at time.Time, radius time.Duration) TimeWindow {
	return TimeWindow{Start: at.Add(-radius), End: at.Add(radius)}
}

func (p TimeWindow) Clause() (string, []any) {
	return "appointments.appointment_date BETWEEN ? AND ?", []any{p.Start.UTC(), p.End.UTC()}
}

// Contains reports whether t falls inside the window.
func (p TimeWindow) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// DayRange matches appointments in the half-open range [Start, End).
type DayRange struct {
	Start time.Time
	End   time.Time
}

func (p DayRange) Clause() (string, []any) {
	return "appointments.appointment_date >= ? AND appointments.appointment_date < ?", []any{p.Start.UTC(), p.End.UTC()}
}

// PartyMatch matches appointments held by the dentist or attended by the
// patient. A nil id drops that side of the disjunction.
type PartyMatch struct {
	DentistID uuid.UUID
	PatientID uuid.UUID
}

func (p PartyMatch) Clause() (string, []any) {
	var parts []string
	var args []any
	if p.DentistID != uuid.Nil {
		parts = append(parts, "appointments.dentist_id = ?")
		args = append(args, p.DentistID)
	}
	if p.PatientID != uuid.Nil {
		parts = append(parts, "appointments.patient_id = ?")
		args = append(args, p.PatientID)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// StatusNot excludes appointments in the given status.
type StatusNot struct {
	Status enums.AppointmentStatus
}

func (p StatusNot) Clause() (string, []any) {
	return "appointments.status <> ?", []any{p.Status}
}

// ExcludeID leaves one appointment out, so a reschedule never collides with
// its own slot.
type ExcludeID struct {
	ID *uuid.UUID
}

func (p ExcludeID) Clause() (string, []any) {
	if p.ID == nil || *p.ID == uuid.Nil {
		return "", nil
	}
	return "appointments.id <> ?", []any{*p.ID}
}

// Scope ANDs the predicates into one gorm scope.
func Scope(preds ...Predicate) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, p := range preds {
			clause, args := p.Clause()
			if clause == "" {
				continue
			}
			tx = tx.Where(clause, args...)
		}
		return tx
	}
}
