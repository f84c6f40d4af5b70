package models

import (
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleCounsellorIdsByRole(t *testing.T) {
	setupTestDB(t)
	adminCtx := ctxWithUser(1, RoleAdmin)

	manager, err := CreateUser(adminCtx, &NewUser{
		FullName: "Manager One", Email: "m1@edulink.local", Password: "password123", Role: RoleManager,
	})
	require.NoError(t, err)
	supervisor, err := CreateUser(adminCtx, &NewUser{
		FullName: "Supervisor", Email: "sup@edulink.local", Password: "password123", Role: RoleManager, Supervising: true,
	})
	require.NoError(t, err)

	c1 := createTestCounsellor(t, adminCtx, "c1@edulink.local", manager.ID)
	c2 := createTestCounsellor(t, adminCtx, "c2@edulink.local", manager.ID)
	c3 := createTestCounsellor(t, adminCtx, "c3@edulink.local", 0)

	_, all, err := VisibleCounsellorIds(ctxWithUser(1, RoleAdmin))
	require.NoError(t, err)
	assert.True(t, all)

	_, all, err = VisibleCounsellorIds(ctxWithUser(supervisor.ID, RoleManager))
	require.NoError(t, err)
	assert.True(t, all)

	ids, all, err := VisibleCounsellorIds(ctxWithUser(manager.ID, RoleManager))
	require.NoError(t, err)
	assert.False(t, all)
	assert.ElementsMatch(t, []int{c1.ID, c2.ID}, ids)

	ids, all, err = VisibleCounsellorIds(ctxWithUser(c3.ID, RoleCounsellor))
	require.NoError(t, err)
	assert.False(t, all)
	assert.Equal(t, []int{c3.ID}, ids)
}

func TestGetVisibleClientsExcludesArchived(t *testing.T) {
	setupTestDB(t)
	adminCtx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, adminCtx, "c1@edulink.local", 0)

	active := createTestClient(t, adminCtx, counsellor.ID, time.Now())
	archived := createTestClient(t, adminCtx, counsellor.ID, time.Now())
	require.NoError(t, ArchiveClient(adminCtx, archived.ID))

	clients, err := GetVisibleClients(ctxWithUser(counsellor.ID, RoleCounsellor))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, active.ID, clients[0].ID)
}

func TestCreateClientDefaultsToCallingCounsellor(t *testing.T) {
	setupTestDB(t)
	adminCtx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, adminCtx, "c1@edulink.local", 0)

	ctx := ctxWithUser(counsellor.ID, RoleCounsellor)
	client, err := CreateClient(ctx, &NewClient{FullName: "Self Booked"})
	require.NoError(t, err)
	assert.Equal(t, counsellor.ID, client.CounsellorId)
}

func TestCreateClientPhoneValidation(t *testing.T) {
	setupTestDB(t)
	adminCtx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, adminCtx, "c1@edulink.local", 0)

	_, err := CreateClient(adminCtx, &NewClient{
		CounsellorId: counsellor.ID,
		FullName:     "Bad Phone",
		Phone:        "12345",
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))

	client, err := CreateClient(adminCtx, &NewClient{
		CounsellorId: counsellor.ID,
		FullName:     "Good Phone",
		Phone:        "+12025550123",
	})
	require.NoError(t, err)
	assert.Equal(t, "+12025550123", client.Phone)
}
