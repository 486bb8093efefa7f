package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/pagination"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Gender    *string   `json:"gender,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"isActive"`
	RoleID    *int      `json:"roleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Gender       *string
	Phone        *string
}

// ListFilter narrows and orders a users listing.
type ListFilter struct {
	Page      pagination.Params
	SortBy    string
	SortOrder string
	Search    string
	IsActive  *bool
}

// Sortable listing columns keyed by their query parameter value.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
}

const (
	DefaultSortBy = "createdAt"
	SortAsc       = "asc"
	SortDesc      = "desc"
)

// IsValidSortBy reports whether value names a sortable column.
func IsValidSortBy(value string) bool {
	_, ok := sortColumns[value]
	return ok
}

// IsValidSortOrder reports whether value is asc or desc, ignoring case.
func IsValidSortOrder(value string) bool {
	v := strings.ToLower(value)
	return v == SortAsc || v == SortDesc
}

func (f ListFilter) orderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[DefaultSortBy]
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, SortAsc) {
		direction = "ASC"
	}
	return "users." + column + " " + direction + ", users.id " + direction
}

// FromModel maps a user row onto its public projection.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    u.Gender,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToModel builds an insertable user. Emails are stored trimmed and lower-cased.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
		Gender:       c.Gender,
		Phone:        c.Phone,
		IsActive:     true,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
