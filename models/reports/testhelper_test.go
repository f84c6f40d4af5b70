package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.MigrateAll(db))
	config.SetDB(db)
	return db
}

func adminCtx() context.Context {
	ctx := utils.SetUserIdInContext(context.Background(), 1)
	return utils.SetRoleInContext(ctx, string(models.RoleAdmin))
}

func createCounsellor(t *testing.T, ctx context.Context, email string) *models.User {
	t.Helper()
	user, err := models.CreateUser(ctx, &models.NewUser{
		FullName: "Counsellor " + email,
		Email:    email,
		Password: "password123",
		Role:     models.RoleCounsellor,
	})
	require.NoError(t, err)
	return user
}

func createClient(t *testing.T, ctx context.Context, counsellorId int, enrolled time.Time) *models.Client {
	t.Helper()
	client, err := models.CreateClient(ctx, &models.NewClient{
		CounsellorId:   counsellorId,
		FullName:       "Client",
		EnrollmentDate: &enrolled,
	})
	require.NoError(t, err)
	return client
}

func createStagedPayment(t *testing.T, ctx context.Context, clientId int, stage models.PaymentStage, amount, total int64, invoiceNo string, date time.Time) {
	t.Helper()
	_, err := models.SavePayment(ctx, &models.NewPayment{
		ClientId:     clientId,
		Stage:        stage,
		Amount:       decimal.NewFromInt(amount),
		TotalPayment: decimal.NewFromInt(total),
		PaymentDate:  &date,
		InvoiceNo:    invoiceNo,
	})
	require.NoError(t, err)
}
