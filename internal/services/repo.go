package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/internal/repo"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
)

// Repository persists the service catalog.
type Repository struct {
	repo.Base
}

// NewRepository binds a catalog repository to conn.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, description string) (*models.Service, error) {
	svc := &models.Service{ID: uuid.New(), Description: description}
	if err := r.DB(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

// List returns the catalog ordered by description.
func (r *Repository) List(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := r.DB(ctx).Order("description ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID loads a catalog entry.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := r.DB(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *Repository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (bool, error) {
	return repo.Matched(r.DB(ctx).Model(&models.Service{}).Where("id = ?", id).Update("description", description))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.DeleteByID(ctx, &models.Service{}, id)
}

// CountAppointments returns how many appointments reference the service.
func (r *Repository) CountAppointments(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.Count(ctx, &models.Appointment{}, "service_id = ?", id)
}
