package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

// Service exposes the read side of the user directory.
type Service interface {
	List(ctx context.Context, filter ListFilter) (pagination.Page[UserDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindRoleForUser(ctx context.Context, id uuid.UUID) (enums.Role, bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
}

type service struct {
	repo userStore
}

// NewService builds the user directory service.
func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (pagination.Page[UserDTO], error) {
	if filter.SortBy != "" && !IsValidSortBy(filter.SortBy) {
		return pagination.Page[UserDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "sortBy must be one of createdAt, email, firstName, lastName")
	}
	if filter.SortOrder != "" && !IsValidSortOrder(filter.SortOrder) {
		return pagination.Page[UserDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "sortOrder must be asc or desc")
	}
	filter.Page = filter.Page.Normalize()

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.NewPage(items, filter.Page, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	dto := FromModel(user)
	role, ok, err := s.repo.FindRoleForUser(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user role")
	}
	if ok {
		roleID := role.ID()
		dto.RoleID = &roleID
	}
	return dto, nil
}
