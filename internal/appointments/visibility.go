package appointments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/visibility"
)

// ListForRequester returns the appointments visible to requesterID. Dentists
// see the appointments they hold and patients the ones they attend.
func (s *service) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]AppointmentDTO, error) {
	role, hasRole, err := s.roles.FindRoleForUser(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve user role")
	}

	pred, err := requesterScope(requesterID, role, hasRole)
	if err != nil {
		return nil, err
	}
	rows, err := NewRepository(s.db.DB()).ListWhere(ctx, pred)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list appointments")
	}
	return toDTOs(rows), nil
}

// ListByDateAndUser returns the appointments on one UTC calendar day where
// userID is either party.
func (s *service) ListByDateAndUser(ctx context.Context, date, userID string) ([]AppointmentDTO, error) {
	var missing []string
	if strings.TrimSpace(date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(userID) == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date and userId are required").
			WithDetails(map[string]any{"fields": missing}).
			WithReason(pkgerrors.ReasonMissingFields)
	}

	start, end, err := DayBounds(date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted as YYYY-MM-DD").
			WithReason(pkgerrors.ReasonInvalidDate)
	}
	id, ok := parseID(userID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId must be a valid UUID")
	}

	rows, err := NewRepository(s.db.DB()).ListForUserBetween(ctx, id, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list appointments by date")
	}
	return toDTOs(rows), nil
}

// requesterScope turns the requester's role into the participant predicate a
// listing is filtered by.
func requesterScope(requesterID uuid.UUID, role enums.Role, hasRole bool) (Predicate, error) {
	scope, err := visibility.AppointmentScope(role, hasRole)
	if err != nil {
		return nil, err
	}
	if scope == visibility.ScopeDentist {
		return PartyMatch{DentistID: requesterID}, nil
	}
	return PartyMatch{PatientID: requesterID}, nil
}
