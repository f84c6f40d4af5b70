package reports

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRanksByEnrollmentsThenRevenue(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()

	c1 := createCounsellor(t, ctx, "c1@edulink.local")
	c2 := createCounsellor(t, ctx, "c2@edulink.local")
	c3 := createCounsellor(t, ctx, "c3@edulink.local")

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	// c1: 2 enrollments; c2: 1 enrollment, higher revenue; c3: 1 enrollment
	createClient(t, ctx, c1.ID, now)
	createClient(t, ctx, c1.ID, now)
	client2 := createClient(t, ctx, c2.ID, now)
	createClient(t, ctx, c3.ID, now)

	createStagedPayment(t, ctx, client2.ID, models.PaymentStageInitial, 90000, 100000, "INV-1", now)

	rows, err := GetLeaderboard(ctx, month, year)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, c1.ID, rows[0].CounsellorId)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, c2.ID, rows[1].CounsellorId)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, c3.ID, rows[2].CounsellorId)
	assert.Equal(t, 3, rows[2].Rank)
}

func TestLeaderboardNoRankSharing(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()

	c1 := createCounsellor(t, ctx, "c1@edulink.local")
	c2 := createCounsellor(t, ctx, "c2@edulink.local")

	now := time.Now()
	createClient(t, ctx, c1.ID, now)
	createClient(t, ctx, c2.ID, now)

	rows, err := GetLeaderboard(ctx, int(now.Month()), now.Year())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// identical (enrollments, revenue) still get distinct ranks from list order
	assert.Equal(t, rows[0].Enrollments, rows[1].Enrollments)
	assert.True(t, rows[0].Revenue.Equal(rows[1].Revenue))
	assert.NotEqual(t, rows[0].Rank, rows[1].Rank)
	assert.Equal(t, []int{1, 2}, []int{rows[0].Rank, rows[1].Rank})
}

func TestLeaderboardRevenueExcludesCountOnlyProducts(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()

	counsellor := createCounsellor(t, ctx, "c1@edulink.local")
	now := time.Now()
	client := createClient(t, ctx, counsellor.ID, now)

	_, err := models.SaveProductPayment(ctx, &models.NewProductPayment{
		ClientId:    client.ID,
		ProductName: models.ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"TP","amount":1500}`),
	})
	require.NoError(t, err)
	_, err = models.SaveProductPayment(ctx, &models.NewProductPayment{
		ClientId:    client.ID,
		ProductName: models.ProductLoan,
		EntityData:  json.RawMessage(`{"bank":"KBZ","amount":90000}`),
	})
	require.NoError(t, err)

	rows, err := GetLeaderboard(ctx, int(now.Month()), now.Year())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(1500)),
		"loan must not contribute revenue, got %s", rows[0].Revenue)
}

func TestLeaderboardMergesTargets(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()

	counsellor := createCounsellor(t, ctx, "c1@edulink.local")
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	createClient(t, ctx, counsellor.ID, now)

	created, err := models.SetLeaderboardTarget(ctx, &models.NewLeaderboardTarget{
		CounsellorId: counsellor.ID,
		Month:        month,
		Year:         year,
		Target:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreated, created.Action)
	assert.Equal(t, 1, created.Record.AchievedTarget)

	// setting the same month again updates in place instead of duplicating
	updated, err := models.SetLeaderboardTarget(ctx, &models.NewLeaderboardTarget{
		CounsellorId: counsellor.ID,
		Month:        month,
		Year:         year,
		Target:       8,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionUpdated, updated.Action)
	assert.Equal(t, created.Record.ID, updated.Record.ID)

	rows, err := GetLeaderboard(ctx, month, year)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Target)
	assert.Equal(t, 1, rows[0].AchievedTarget)
}

func TestLeaderboardRejectsBadPeriod(t *testing.T) {
	setupTestDB(t)
	_, err := GetLeaderboard(adminCtx(), 13, 2025)
	require.Error(t, err)
	_, err = GetLeaderboard(adminCtx(), 0, 2025)
	require.Error(t, err)
}

func TestSetTargetRoleValidation(t *testing.T) {
	setupTestDB(t)
	ctx := adminCtx()
	counsellor := createCounsellor(t, ctx, "c1@edulink.local")

	counsellorCtx := utils.SetRoleInContext(
		utils.SetUserIdInContext(ctx, counsellor.ID), string(models.RoleCounsellor))

	_, err := models.SetLeaderboardTarget(counsellorCtx, &models.NewLeaderboardTarget{
		CounsellorId: counsellor.ID,
		Month:        1,
		Year:         2025,
		Target:       5,
	})
	require.Error(t, err)
}
