package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the domain repositories. Every query goes through DB so
// the request context reaches the driver.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Matched turns the result of an update or delete into a found flag.
func Matched(res *gorm.DB) (bool, error) {
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID hard deletes the row of model's table with the given primary key.
func (b Base) DeleteByID(ctx context.Context, model any, id any) (bool, error) {
	return Matched(b.DB(ctx).Where("id = ?", id).Delete(model))
}

// Count counts rows of model's table matching the condition.
func (b Base) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	if err := b.DB(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
