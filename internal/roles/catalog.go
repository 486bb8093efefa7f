package roles

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db/models"
	"github.com/angelmondragon/dentalclinic-backend/pkg/enums"
)

// Catalog is the verified mapping between the role enumeration and the rows
// seeded in the roles table.
type Catalog struct {
	descriptions map[enums.Role]string
}

// LoadCatalog reads the roles table and checks that every enums.Role is seeded
// under its expected description. The API refuses to start otherwise.
func LoadCatalog(ctx context.Context, conn *gorm.DB) (*Catalog, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	var rows []models.Role
	if err := conn.WithContext(ctx).Where("id IN ?", roleIDs()).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading roles: %w", err)
	}

	byID := make(map[int]string, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.Description
	}

	catalog := &Catalog{descriptions: make(map[enums.Role]string, len(rows))}
	for _, role := range enums.Roles() {
		description, ok := byID[role.ID()]
		if !ok {
			return nil, fmt.Errorf("role %d (%s) is not seeded", role.ID(), role)
		}
		if !strings.EqualFold(strings.TrimSpace(description), role.String()) {
			return nil, fmt.Errorf("role %d is %q, expected %q", role.ID(), description, role.String())
		}
		catalog.descriptions[role] = description
	}
	return catalog, nil
}

// Description returns the stored description for role.
func (c *Catalog) Description(role enums.Role) (string, bool) {
	if c == nil {
		return "", false
	}
	d, ok := c.descriptions[role]
	return d, ok
}

// IsProtected reports whether id backs an enums.Role and so must not be
// deleted.
func IsProtected(id int) bool {
	_, err := enums.RoleFromID(id)
	return err == nil
}

func roleIDs() []int {
	all := enums.Roles()
	ids := make([]int, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID())
	}
	return ids
}
