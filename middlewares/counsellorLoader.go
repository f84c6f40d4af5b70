package middlewares

import (
	"context"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type counsellorReader struct {
	db *gorm.DB
}

func (r *counsellorReader) getCounsellors(ctx context.Context, ids []int) []*dataloader.Result[*models.User] {
	var results []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.User](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetCounsellor(ctx context.Context, id int) (*models.User, error) {
	loaders := For(ctx)
	return loaders.counsellorLoader.Load(ctx, id)()
}

func GetCounsellorsByIds(ctx context.Context, ids []int) ([]*models.User, []error) {
	loaders := For(ctx)
	return loaders.counsellorLoader.LoadMany(ctx, ids)()
}
