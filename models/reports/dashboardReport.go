package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/models"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

// StatValue is one dashboard figure: a count, the summed amount behind it,
// and the change versus the comparable prior window.
type StatValue struct {
	Count  int                    `json:"count"`
	Amount decimal.Decimal        `json:"amount"`
	Change utils.PercentageChange `json:"change"`
}

type StageBalance struct {
	Stage  models.PaymentStage `json:"stage"`
	Amount decimal.Decimal     `json:"amount"`
}

// OutstandingBalance is always "as of now" over the whole visible client
// base, never window-filtered.
type OutstandingBalance struct {
	Expected    decimal.Decimal `json:"expected"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Stages      []StageBalance  `json:"stages"`
}

type ChartPoint struct {
	Label         string          `json:"label"`
	CoreSale      decimal.Decimal `json:"core_sale"`
	CoreProduct   decimal.Decimal `json:"core_product"`
	OtherProducts decimal.Decimal `json:"other_products"`
}

type DashboardStats struct {
	FilterType    string             `json:"filter_type"`
	Enrollments   StatValue          `json:"enrollments"`
	CoreSale      StatValue          `json:"core_sale"`
	CoreProduct   StatValue          `json:"core_product"`
	OtherProducts StatValue          `json:"other_products"`
	Outstanding   OutstandingBalance `json:"outstanding"`
	Chart         []ChartPoint       `json:"chart"`
}

// scopeFilter is the caller's resolved visibility, applied to every query.
type scopeFilter struct {
	ids []int
	all bool
}

func (s scopeFilter) applyClients(query *gorm.DB) *gorm.DB {
	query = query.Where("clients.archived = ?", false)
	if !s.all {
		query = query.Where("clients.counsellor_id IN ?", s.ids)
	}
	return query
}

// windowTotals holds the per-window figures before percentage changes are
// attached.
type windowTotals struct {
	enrollments       int
	coreSaleCount     int
	coreSaleAmount    decimal.Decimal
	coreProductCount  int
	coreProductAmount decimal.Decimal
	otherCount        int
	otherAmount       decimal.Decimal
}

// GetDashboardStats computes the dashboard figures for one rolling window and
// the caller's visibility scope. Everything is recomputed from the ledgers on
// each call; nothing derived is persisted.
func GetDashboardStats(ctx context.Context, filterType string) (*DashboardStats, error) {
	ctx, span := otel.Tracer("reports").Start(ctx, "GetDashboardStats")
	defer span.End()
	started := time.Now()
	defer logIfSlow("GetDashboardStats", started)

	window, err := utils.ResolveWindow(filterType, time.Now())
	if err != nil {
		return nil, err
	}
	ids, all, err := models.VisibleCounsellorIds(ctx)
	if err != nil {
		return nil, err
	}
	scope := scopeFilter{ids: ids, all: all}
	rules := models.DefaultRevenueRules()

	userId, _ := utils.GetUserIdFromContext(ctx)
	cacheKey := fmt.Sprintf("dashboard:stats:%s:%d", filterType, userId)
	var cached DashboardStats
	if getCachedReport(cacheKey, &cached) {
		return &cached, nil
	}

	current, err := computeWindowTotals(ctx, scope, rules, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	previous, err := computeWindowTotals(ctx, scope, rules, window.PrevStart, window.PrevEnd)
	if err != nil {
		return nil, err
	}

	outstanding, err := computeOutstandingBalance(ctx, scope)
	if err != nil {
		return nil, err
	}

	chart, err := chartSeries(ctx, scope, rules, filterType, window)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		FilterType: filterType,
		Enrollments: StatValue{
			Count:  current.enrollments,
			Change: utils.CalculatePercentageChange(decimal.NewFromInt(int64(current.enrollments)), decimal.NewFromInt(int64(previous.enrollments))),
		},
		CoreSale: StatValue{
			Count:  current.coreSaleCount,
			Amount: current.coreSaleAmount,
			Change: utils.CalculatePercentageChange(current.coreSaleAmount, previous.coreSaleAmount),
		},
		CoreProduct: StatValue{
			Count:  current.coreProductCount,
			Amount: current.coreProductAmount,
			Change: utils.CalculatePercentageChange(current.coreProductAmount, previous.coreProductAmount),
		},
		OtherProducts: StatValue{
			Count:  current.otherCount,
			Amount: current.otherAmount,
			Change: utils.CalculatePercentageChange(current.otherAmount, previous.otherAmount),
		},
		Outstanding: *outstanding,
		Chart:       chart,
	}

	setCachedReport(cacheKey, stats)
	return stats, nil
}

// computeWindowTotals scans both ledgers for one [start, end) range.
// Accumulation happens in Go with decimal arithmetic so the figures never
// pass through floats.
func computeWindowTotals(ctx context.Context, scope scopeFilter, rules models.RevenueRules, start, end time.Time) (*windowTotals, error) {
	db := config.GetDB()
	totals := &windowTotals{
		coreSaleAmount:    decimal.Zero,
		coreProductAmount: decimal.Zero,
		otherAmount:       decimal.Zero,
	}

	var enrollments int64
	query := scope.applyClients(db.WithContext(ctx).Model(&models.Client{}))
	err := query.
		Where("clients.enrollment_date >= ? AND clients.enrollment_date < ?", start, end).
		Count(&enrollments).Error
	if err != nil {
		return nil, err
	}
	totals.enrollments = int(enrollments)

	// core sale: staged payments in revenue stages, windowed on payment_date
	var payments []*models.Payment
	query = scope.applyClients(db.WithContext(ctx).Model(&models.Payment{}).
		Joins("JOIN clients ON clients.id = payments.client_id"))
	err = query.
		Where("payments.stage IN ?", models.RevenueStages).
		Where("payments.payment_date >= ? AND payments.payment_date < ?", start, end).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		totals.coreSaleCount++
		totals.coreSaleAmount = totals.coreSaleAmount.Add(p.Amount)
	}

	// products: ledger rows windowed on created_at, amounts resolved through
	// the satellite tables
	var rows []*models.ProductPayment
	query = scope.applyClients(db.WithContext(ctx).Model(&models.ProductPayment{}).
		Joins("JOIN clients ON clients.id = product_payments.client_id"))
	err = query.
		Where("product_payments.created_at >= ? AND product_payments.created_at < ?", start, end).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	models.ResolveEntities(ctx, rows)

	for _, row := range rows {
		if row.ProductName == rules.CoreProduct {
			totals.coreProductCount++
			totals.coreProductAmount = totals.coreProductAmount.Add(row.ResolvedAmount())
			continue
		}
		totals.otherCount++
		if !rules.IsCountOnly(row.ProductName) {
			totals.otherAmount = totals.otherAmount.Add(row.ResolvedAmount())
		}
	}

	return totals, nil
}

// computeOutstandingBalance reports expected vs paid over the whole visible
// client base. Every stage row repeats the client's contract total, so the
// expected figure takes one totalPayment per client, using the most recent
// row as authoritative when rows diverge.
func computeOutstandingBalance(ctx context.Context, scope scopeFilter) (*OutstandingBalance, error) {
	db := config.GetDB()

	var payments []*models.Payment
	query := scope.applyClients(db.WithContext(ctx).Model(&models.Payment{}).
		Joins("JOIN clients ON clients.id = payments.client_id"))
	err := query.
		Order("payments.id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	expectedByClient := make(map[int]decimal.Decimal)
	paid := decimal.Zero
	stageTotals := map[models.PaymentStage]decimal.Decimal{}
	revenueStage := make(map[models.PaymentStage]bool, len(models.RevenueStages))
	for _, stage := range models.RevenueStages {
		revenueStage[stage] = true
	}

	for _, p := range payments {
		expectedByClient[p.ClientId] = p.TotalPayment
		stageTotals[p.Stage] = stageTotals[p.Stage].Add(p.Amount)
		if revenueStage[p.Stage] {
			paid = paid.Add(p.Amount)
		}
	}

	expected := decimal.Zero
	for _, total := range expectedByClient {
		expected = expected.Add(total)
	}

	outstanding := expected.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	stages := make([]StageBalance, 0, len(models.RevenueStages)+1)
	for _, stage := range []models.PaymentStage{
		models.PaymentStageInitial,
		models.PaymentStageBeforeVisa,
		models.PaymentStageAfterVisa,
		models.PaymentStageSubmittedVisa,
	} {
		stages = append(stages, StageBalance{Stage: stage, Amount: stageTotals[stage]})
	}

	return &OutstandingBalance{
		Expected:    expected,
		Paid:        paid,
		Outstanding: outstanding,
		Stages:      stages,
	}, nil
}

// chartSeries recomputes the revenue breakdown once per bucket: daily buckets
// for today/weekly/monthly, monthly buckets for yearly.
func chartSeries(ctx context.Context, scope scopeFilter, rules models.RevenueRules, filterType string, window utils.Window) ([]ChartPoint, error) {
	var points []ChartPoint

	appendPoint := func(label string, start, end time.Time) error {
		totals, err := computeWindowTotals(ctx, scope, rules, start, end)
		if err != nil {
			return err
		}
		points = append(points, ChartPoint{
			Label:         label,
			CoreSale:      totals.coreSaleAmount,
			CoreProduct:   totals.coreProductAmount,
			OtherProducts: totals.otherAmount,
		})
		return nil
	}

	if filterType == utils.WindowYearly {
		cursor := time.Date(window.Start.Year(), window.Start.Month(), 1, 0, 0, 0, 0, window.Start.Location())
		for cursor.Before(window.End) {
			next := cursor.AddDate(0, 1, 0)
			end := next
			if end.After(window.End) {
				end = window.End
			}
			if err := appendPoint(cursor.Format("Jan 2006"), cursor, end); err != nil {
				return nil, err
			}
			cursor = next
		}
		return points, nil
	}

	cursor := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, window.Start.Location())
	for cursor.Before(window.End) {
		next := cursor.AddDate(0, 0, 1)
		start := cursor
		if start.Before(window.Start) {
			start = window.Start
		}
		end := next
		if end.After(window.End) {
			end = window.End
		}
		if err := appendPoint(cursor.Format("2006-01-02"), start, end); err != nil {
			return nil, err
		}
		cursor = next
	}
	return points, nil
}
