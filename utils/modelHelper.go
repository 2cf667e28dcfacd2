package utils

import (
	"context"

	"gorm.io/gorm"
)

/* DB fetching */

// FetchModel loads T by primary key, preloading associations. A missing row comes back as
// a 404 AppError carrying notFoundMessage.
func FetchModel[T any](ctx context.Context, db *gorm.DB, id int, notFoundMessage string, associations ...string) (*T, error) {
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		return nil, NotFoundOr(err, notFoundMessage)
	}
	return &result, nil
}

// ExistsByID reports whether a row of T with id exists.
func ExistsByID[T any](ctx context.Context, db *gorm.DB, id int) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
