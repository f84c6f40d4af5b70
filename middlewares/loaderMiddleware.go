package middlewares

import (
	"context"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the per-request data loaders injected via middleware.
type Loaders struct {
	counsellorLoader *dataloader.Loader[int, *models.User]
	clientLoader     *dataloader.Loader[int, *models.Client]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	counsellorReader := &counsellorReader{db: conn}
	clientReader := &clientReader{db: conn}

	return &Loaders{
		counsellorLoader: dataloader.NewBatchedLoader(counsellorReader.getCounsellors, dataloader.WithWait[int, *models.User](time.Millisecond)),
		clientLoader:     dataloader.NewBatchedLoader(clientReader.getClients, dataloader.WithWait[int, *models.Client](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results, keeping request order
func generateLoaderResults[T models.Identifier](results []T, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]*T, len(results))
	for i := range results {
		resultMap[results[i].GetId()] = &results[i]
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[id]})
	}
	return loaderResults
}
