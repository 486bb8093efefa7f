package appointments

import (
	"context"
	"hash/fnv"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
)

// lockParties takes a transaction scoped advisory lock per party so two writes
// touching the same dentist or patient serialize before their conflict checks.
// Keys are taken in ascending order. Other dialects are left alone.
func lockParties(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) error {
	if !db.IsPostgres(tx) {
		return nil
	}
	for _, key := range advisoryKeys(ids...) {
		if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
			return err
		}
	}
	return nil
}

// advisoryKeys maps ids to distinct sorted lock keys.
func advisoryKeys(ids ...uuid.UUID) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		key := advisoryKey(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func advisoryKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("appointment-party:"))
	_, _ = h.Write(id[:])
	return int64(h.Sum64())
}
