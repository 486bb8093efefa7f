package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

// Service manages the roles catalog.
type Service interface {
	Create(ctx context.Context, input RoleInput) (*RoleDTO, error)
	List(ctx context.Context) ([]RoleDTO, error)
	Get(ctx context.Context, id int) (*RoleDTO, error)
	Update(ctx context.Context, id int, input RoleInput) (*RoleDTO, error)
	Delete(ctx context.Context, id int) error
}

type roleStore interface {
	Create(ctx context.Context, description string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id int) (*models.Role, error)
	UpdateDescription(ctx context.Context, id int, description string) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	CountAssignments(ctx context.Context, id int) (int64, error)
}

type service struct {
	repo roleStore
}

// NewService builds a roles service over repo.
func NewService(repo roleStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("roles repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input RoleInput) (*RoleDTO, error) {
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	role, err := s.repo.Create(ctx, description)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "role description already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create role")
	}
	dto := fromModel(role)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]RoleDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list roles")
	}
	out := make([]RoleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int) (*RoleDTO, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role")
	}
	dto := fromModel(role)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int, input RoleInput) (*RoleDTO, error) {
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	if IsProtected(id) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "built-in roles cannot be renamed")
	}
	ok, err := s.repo.UpdateDescription(ctx, id, description)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "role description already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int) error {
	if IsProtected(id) {
		return pkgerrors.New(pkgerrors.CodeConflict, "built-in roles cannot be deleted")
	}
	count, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count role assignments")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete role: role is assigned to users")
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete role: role is assigned to users")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete role")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
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
