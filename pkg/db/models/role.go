package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a row of the roles catalog.
type Role struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	Description string    `gorm:"column:description;not null;unique"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// UserRole binds a user to its single governing role.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_user_roles_user_id"`
	RoleID    int       `gorm:"column:role_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
