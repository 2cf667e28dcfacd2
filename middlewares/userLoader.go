package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

type userReader struct {
	db *gorm.DB
}

func (r *userReader) getUsers(ctx context.Context, ids []int) []*dataloader.Result[*models.User] {
	var results []*models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.User](len(ids), err)
	}
	return generateLoaderResults(results, ids, func(u *models.User) int { return u.ID })
}

func (r *userReader) getUsersByCedula(ctx context.Context, cedulas []string) []*dataloader.Result[*models.User] {
	var results []*models.User
	err := r.db.WithContext(ctx).Where("cedula IN ?", utils.UniqueSlice(cedulas)).Find(&results).Error
	if err != nil {
		return handleError[*models.User](len(cedulas), err)
	}
	return generateLoaderResults(results, cedulas, func(u *models.User) string { return u.Cedula })
}

// GetUser returns nil without error when the user does not exist.
func GetUser(ctx context.Context, id int) (*models.User, error) {
	loaders := For(ctx)
	return loaders.UserLoader.Load(ctx, id)()
}

func GetUsers(ctx context.Context, ids []int) ([]*models.User, []error) {
	loaders := For(ctx)
	return loaders.UserLoader.LoadMany(ctx, ids)()
}

// GetUserByCedula returns nil without error when no account has that cédula.
func GetUserByCedula(ctx context.Context, cedula string) (*models.User, error) {
	loaders := For(ctx)
	return loaders.UserByCedulaLoader.Load(ctx, cedula)()
}

func GetUsersByCedula(ctx context.Context, cedulas []string) ([]*models.User, []error) {
	loaders := For(ctx)
	return loaders.UserByCedulaLoader.LoadMany(ctx, cedulas)()
}

// FirstError picks the first non-nil error of a LoadMany call.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
