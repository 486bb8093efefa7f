package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/repo"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// ErrEmailTaken is returned when the unique email index rejects an insert.
var ErrEmailTaken = errors.New("email already registered")

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// AssignRole binds the user to role. A user holds at most one role.
func (r *Repository) AssignRole(ctx context.Context, userID uuid.UUID, role enums.Role) error {
	return r.DB(ctx).Create(&models.UserRole{
		ID:     uuid.New(),
		UserID: userID,
		RoleID: role.ID(),
	}).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user row with id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.Count(ctx, &models.User{}, "id = ?", id)
	return n > 0, err
}

// FindRoleForUser resolves the governing role of a user. It returns
// gorm.ErrRecordNotFound when the user does not exist and ok=false when the
// user has no role or a role outside the known catalog.
func (r *Repository) FindRoleForUser(ctx context.Context, id uuid.UUID) (enums.Role, bool, error) {
	var rows []struct {
		RoleID *int
	}
	err := r.DB(ctx).
		Table("users").
		Select("user_roles.role_id AS role_id").
		Joins("LEFT JOIN user_roles ON user_roles.user_id = users.id").
		Where("users.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, gorm.ErrRecordNotFound
	}
	if rows[0].RoleID == nil {
		return 0, false, nil
	}
	role, err := enums.RoleFromID(*rows[0].RoleID)
	if err != nil {
		return 0, false, nil
	}
	return role, true, nil
}

// RecordLogin stamps updated_at for a successful login. A non-empty
// passwordHash replaces the stored hash in the same statement.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, passwordHash string) error {
	columns := map[string]any{"updated_at": at}
	if passwordHash != "" {
		columns["password_hash"] = passwordHash
	}
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(columns).Error
}

// Update applies column updates to a user and reports whether a row matched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return r.Exists(ctx, id)
	}
	found, err := repo.Matched(r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates))
	if db.IsUniqueViolation(err, "") {
		return false, ErrEmailTaken
	}
	return found, err
}

// Delete removes a user. Appointment references block the delete through the
// foreign key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.DeleteByID(ctx, &models.User{}, id)
}

// List returns one page of users matching filter together with the total
// number of matches.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.User, int64, error) {
	return r.list(ctx, filter, 0)
}

// ListByRole is List restricted to users bound to role.
func (r *Repository) ListByRole(ctx context.Context, role enums.Role, filter ListFilter) ([]models.User, int64, error) {
	return r.list(ctx, filter, role)
}

// FindByIDWithRole loads a user only if it holds role.
func (r *Repository) FindByIDWithRole(ctx context.Context, id uuid.UUID, role enums.Role) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id AND user_roles.role_id = ?", role.ID()).
		Where("users.id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) list(ctx context.Context, filter ListFilter, role enums.Role) ([]models.User, int64, error) {
	conn := r.DB(ctx)
	query := conn.Model(&models.User{})
	if role != 0 {
		query = query.Joins("JOIN user_roles ON user_roles.user_id = users.id AND user_roles.role_id = ?", role.ID())
	}
	if filter.Search != "" {
		op := "LIKE"
		if db.IsPostgres(conn) {
			op = "ILIKE"
		}
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"(users.first_name "+op+" ? OR users.last_name "+op+" ? OR users.email "+op+" ?)",
			pattern, pattern, pattern,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("users.is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var items []models.User
	err := query.
		Order(filter.orderClause()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
