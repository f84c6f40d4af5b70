package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// LeaderboardRow is one counsellor's standing for a calendar month.
type LeaderboardRow struct {
	CounsellorId   int             `json:"counsellor_id"`
	CounsellorName string          `json:"counsellor_name"`
	Enrollments    int             `json:"enrollments"`
	Revenue        decimal.Decimal `json:"revenue"`
	Target         int             `json:"target"`
	AchievedTarget int             `json:"achieved_target"`
	Rank           int             `json:"rank"`
}

// GetLeaderboard ranks every counsellor for one calendar month: enrollments
// and revenue are counted over the calendar month (not a rolling window),
// merged with any stored target, sorted descending by (enrollments, revenue),
// and given dense 1-based ranks. Equal pairs still get distinct ranks from
// list order.
func GetLeaderboard(ctx context.Context, month, year int) ([]*LeaderboardRow, error) {
	ctx, span := otel.Tracer("reports").Start(ctx, "GetLeaderboard")
	defer span.End()
	started := time.Now()
	defer logIfSlow("GetLeaderboard", started)

	if month < 1 || month > 12 {
		return nil, utils.NewValidationError("month", "must be between 1 and 12")
	}
	if year < 2000 {
		return nil, utils.NewValidationError("year", "must be a four-digit year")
	}

	cacheKey := fmt.Sprintf("leaderboard:%d-%d", year, month)
	var cached []*LeaderboardRow
	if getCachedReport(cacheKey, &cached) {
		return cached, nil
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	counsellors, err := models.GetCounsellors(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := enrollmentsByCounsellor(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	revenue, err := revenueByCounsellor(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	targets, err := models.GetTargetsForMonth(ctx, month, year)
	if err != nil {
		return nil, err
	}

	rows := make([]*LeaderboardRow, 0, len(counsellors))
	for _, counsellor := range counsellors {
		row := &LeaderboardRow{
			CounsellorId:   counsellor.ID,
			CounsellorName: counsellor.FullName,
			Enrollments:    enrollments[counsellor.ID],
			Revenue:        revenue[counsellor.ID],
		}
		if target, ok := targets[counsellor.ID]; ok {
			row.Target = target.Target
		}
		row.AchievedTarget = row.Enrollments
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Enrollments != rows[j].Enrollments {
			return rows[i].Enrollments > rows[j].Enrollments
		}
		return rows[i].Revenue.GreaterThan(rows[j].Revenue)
	})
	for i, row := range rows {
		row.Rank = i + 1
	}

	// snapshot the achievement figures onto stored target rows, best effort
	for _, row := range rows {
		if _, ok := targets[row.CounsellorId]; !ok {
			continue
		}
		if err := models.RecordTargetAchievement(ctx, row.CounsellorId, month, year, row.AchievedTarget, row.Revenue); err != nil {
			config.LogError(config.GetLogger(), "reports", "GetLeaderboard", "failed to snapshot achievement", row.CounsellorId, err)
		}
	}

	setCachedReport(cacheKey, rows)
	return rows, nil
}

func enrollmentsByCounsellor(ctx context.Context, start, end time.Time) (map[int]int, error) {
	db := config.GetDB()
	var clients []*models.Client
	err := db.WithContext(ctx).
		Where("archived = ?", false).
		Where("enrollment_date >= ? AND enrollment_date < ?", start, end).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	for _, client := range clients {
		counts[client.CounsellorId]++
	}
	return counts, nil
}

// revenueByCounsellor applies the dashboard's classification rules per
// counsellor: staged payments in revenue stages plus product-ledger amounts,
// with count-only products excluded.
func revenueByCounsellor(ctx context.Context, start, end time.Time) (map[int]decimal.Decimal, error) {
	db := config.GetDB()
	rules := models.DefaultRevenueRules()
	revenue := make(map[int]decimal.Decimal)

	type paymentWithCounsellor struct {
		models.Payment
		CounsellorId int
	}
	var payments []*paymentWithCounsellor
	err := db.WithContext(ctx).Model(&models.Payment{}).
		Select("payments.*, clients.counsellor_id").
		Joins("JOIN clients ON clients.id = payments.client_id").
		Where("clients.archived = ?", false).
		Where("payments.stage IN ?", models.RevenueStages).
		Where("payments.payment_date >= ? AND payments.payment_date < ?", start, end).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		revenue[p.CounsellorId] = revenue[p.CounsellorId].Add(p.Amount)
	}

	var rows []*models.ProductPayment
	err = db.WithContext(ctx).Model(&models.ProductPayment{}).
		Select("product_payments.*").
		Joins("JOIN clients ON clients.id = product_payments.client_id").
		Where("clients.archived = ?", false).
		Where("product_payments.created_at >= ? AND product_payments.created_at < ?", start, end).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	models.ResolveEntities(ctx, rows)

	counsellorByClient, err := counsellorsForClients(ctx, rows)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if rules.IsCountOnly(row.ProductName) {
			continue
		}
		counsellorId, ok := counsellorByClient[row.ClientId]
		if !ok {
			continue
		}
		revenue[counsellorId] = revenue[counsellorId].Add(row.ResolvedAmount())
	}
	return revenue, nil
}

func counsellorsForClients(ctx context.Context, rows []*models.ProductPayment) (map[int]int, error) {
	clientIds := make([]int, 0, len(rows))
	for _, row := range rows {
		clientIds = append(clientIds, row.ClientId)
	}
	clientIds = utils.UniqueSlice(clientIds)
	if len(clientIds) == 0 {
		return map[int]int{}, nil
	}

	db := config.GetDB()
	var clients []*models.Client
	if err := db.WithContext(ctx).Where("id IN ?", clientIds).Find(&clients).Error; err != nil {
		return nil, err
	}
	byClient := make(map[int]int, len(clients))
	for _, client := range clients {
		byClient[client.ID] = client.CounsellorId
	}
	return byClient, nil
}
