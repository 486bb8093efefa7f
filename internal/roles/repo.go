package roles

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/repo"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// Repository persists the roles catalog.
type Repository struct {
	repo.Base
}

// NewRepository binds a roles repository to conn.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, description string) (*models.Role, error) {
	role := &models.Role{Description: description}
	if err := r.DB(ctx).Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// List returns every role ordered by description.
func (r *Repository) List(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	if err := r.DB(ctx).Order("description ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*models.Role, error) {
	var role models.Role
	if err := r.DB(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateDescription renames a role and reports whether a row matched.
func (r *Repository) UpdateDescription(ctx context.Context, id int, description string) (bool, error) {
	return repo.Matched(r.DB(ctx).Model(&models.Role{}).Where("id = ?", id).Update("description", description))
}

func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	return r.DeleteByID(ctx, &models.Role{}, id)
}

// CountAssignments returns how many users are bound to the role.
func (r *Repository) CountAssignments(ctx context.Context, id int) (int64, error) {
	return r.Count(ctx, &models.UserRole{}, "role_id = ?", id)
}
