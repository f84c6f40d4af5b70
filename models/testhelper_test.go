package models

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a per-test in-memory database and installs it as the
// package-global connection.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, MigrateAll(db))
	config.SetDB(db)
	return db
}

func ctxWithUser(userId int, role Role) context.Context {
	ctx := utils.SetUserIdInContext(context.Background(), userId)
	return utils.SetRoleInContext(ctx, string(role))
}

func createTestCounsellor(t *testing.T, ctx context.Context, email string, managerId int) *User {
	t.Helper()
	user, err := CreateUser(ctx, &NewUser{
		FullName:  "Counsellor " + email,
		Email:     email,
		Password:  "password123",
		Role:      RoleCounsellor,
		ManagerId: managerId,
	})
	require.NoError(t, err)
	return user
}

func createTestClient(t *testing.T, ctx context.Context, counsellorId int, enrolled time.Time) *Client {
	t.Helper()
	client, err := CreateClient(ctx, &NewClient{
		CounsellorId:   counsellorId,
		FullName:       "Test Client",
		EnrollmentDate: &enrolled,
	})
	require.NoError(t, err)
	return client
}
