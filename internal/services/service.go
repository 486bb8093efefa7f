package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

const referencedMessage = "cannot delete service: service is referenced by appointments"

// Service manages the clinic's service catalog.
type Service interface {
	Create(ctx context.Context, input ServiceInput) (*ServiceDTO, error)
	List(ctx context.Context) ([]ServiceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ServiceInput) (*ServiceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogStore interface {
	Create(ctx context.Context, description string) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountAppointments(ctx context.Context, id uuid.UUID) (int64, error)
}

type service struct {
	repo catalogStore
}

// NewService builds the catalog service over repo.
func NewService(repo catalogStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("services repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input ServiceInput) (*ServiceDTO, error) {
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, description)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create service")
	}
	dto := fromModel(created)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]ServiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
	}
	dto := fromModel(found)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ServiceInput) (*ServiceDTO, error) {
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateDescription(ctx, id, description)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update service")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountAppointments(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count service references")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, referencedMessage)
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, referencedMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete service")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return nil
}

func normalizeDescription(value string) (string, error) {
	description := strings.TrimSpace(value)
	if description == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "description is required").
			WithReason(pkgerrors.ReasonMissingFields)
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return description, nil
}
