package dentists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
	"github.com/angelmondragon/dentalclinic-backend/pkg/security"
)

const hasAppointmentsMessage = "cannot delete dentist: dentist has scheduled appointments"

// Service manages users holding the dentist role.
type Service interface {
	Create(ctx context.Context, req CreateDentistRequest) (*users.UserDTO, error)
	List(ctx context.Context, query ListQuery) (pagination.Page[users.UserDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateDentistRequest) (*users.UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams bundles the dentist directory dependencies.
type ServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type service struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewService builds the dentist directory service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) Create(ctx context.Context, req CreateDentistRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name and last name are required").
			WithReason(pkgerrors.ReasonMissingFields)
	}
	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var out *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Gender:       req.Gender,
		})
		if err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		if err := repo.AssignRole(ctx, user.ID, enums.RoleDentist); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign dentist role")
		}

		out = withRole(users.FromModel(user))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (pagination.Page[users.UserDTO], error) {
	params := query.Page.Normalize()
	rows, total, err := users.NewRepository(s.db.DB()).ListByRole(ctx, enums.RoleDentist, users.ListFilter{
		Page:      params,
		SortBy:    "firstName",
		SortOrder: users.SortAsc,
		Search:    strings.TrimSpace(query.Search),
	})
	if err != nil {
		return pagination.Page[users.UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list dentists")
	}
	items := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *withRole(users.FromModel(&rows[i])))
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	user, err := users.NewRepository(s.db.DB()).FindByIDWithRole(ctx, id, enums.RoleDentist)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dentist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dentist")
	}
	return withRole(users.FromModel(user)), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateDentistRequest) (*users.UserDTO, error) {
	updates, err := s.updateColumns(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		if _, err := repo.FindByIDWithRole(ctx, id, enums.RoleDentist); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "dentist not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dentist")
		}
		if email, ok := updates["email"].(string); ok {
			existing, err := repo.FindByEmail(ctx, email)
			if err == nil && existing.ID != id {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
		}
		if _, err := repo.Update(ctx, id, updates); err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update dentist")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		if _, err := repo.FindByIDWithRole(ctx, id, enums.RoleDentist); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "dentist not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dentist")
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, hasAppointmentsMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete dentist")
		}
		return nil
	})
}

func (s *service) updateColumns(req UpdateDentistRequest) (map[string]any, error) {
	updates := map[string]any{}
	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if v == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
		}
		updates["first_name"] = v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if v == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name cannot be empty")
		}
		updates["last_name"] = v
	}
	if req.Email != nil {
		v := users.NormalizeEmail(*req.Email)
		if v == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		updates["email"] = v
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	return updates, nil
}

func (s *service) hashPassword(password string) (string, error) {
	if err := security.ValidatePasswordStrength(password); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

func withRole(dto *users.UserDTO) *users.UserDTO {
	if dto == nil {
		return nil
	}
	roleID := enums.RoleDentist.ID()
	dto.RoleID = &roleID
	return dto
}
