package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch the user lookups a request makes while rendering units, tenants and
// payments.
type Loaders struct {
	UserLoader         *dataloader.Loader[int, *models.User]
	UserByCedulaLoader *dataloader.Loader[string, *models.User]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	userReader := &userReader{db: conn}

	return &Loaders{
		UserLoader:         dataloader.NewBatchedLoader(userReader.getUsers, dataloader.WithWait[int, *models.User](time.Millisecond)),
		UserByCedulaLoader: dataloader.NewBatchedLoader(userReader.getUsersByCedula, dataloader.WithWait[string, *models.User](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := WithLoaders(c.Request.Context(), loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// For returns the loaders of the request, or fresh ones outside of a request.
func For(ctx context.Context) *Loaders {
	if loaders, ok := ctx.Value(loadersKey).(*Loaders); ok {
		return loaders
	}
	return NewLoaders(config.GetDB())
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// generateLoaderResults orders results like keys. Missing keys resolve to nil.
func generateLoaderResults[K comparable, T any](results []*T, keys []K, keyOf func(*T) K) []*dataloader.Result[*T] {
	resultMap := make(map[K]*T, len(results))
	for _, result := range results {
		resultMap[keyOf(result)] = result
	}
	loaderResults := make([]*dataloader.Result[*T], 0, len(keys))
	for _, key := range keys {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[key]})
	}
	return loaderResults
}
