package models

import (
	"context"
	"fmt"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeaderboardTarget is one counsellor's monthly enrollment target. The month
// a target belongs to is stored as explicit (month, year) columns, and the
// pair (counsellor_id, month, year) is unique: setting a target for an
// existing month updates the row in place.
type LeaderboardTarget struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ManagerId      int             `gorm:"index;not null" json:"manager_id"`
	CounsellorId   int             `gorm:"not null;uniqueIndex:idx_target_month" json:"counsellor_id"`
	Month          int             `gorm:"not null;uniqueIndex:idx_target_month" json:"month"`
	Year           int             `gorm:"not null;uniqueIndex:idx_target_month" json:"year"`
	Target         int             `gorm:"not null" json:"target"`
	AchievedTarget int             `gorm:"default:0" json:"achieved_target"`
	Revenue        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"revenue"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLeaderboardTarget struct {
	CounsellorId int `json:"counsellor_id" binding:"required"`
	Month        int `json:"month" binding:"required,min=1,max=12"`
	Year         int `json:"year" binding:"required,min=2000"`
	Target       int `json:"target" binding:"required,min=0"`
}

func (input *NewLeaderboardTarget) validate() error {
	if input.Month < 1 || input.Month > 12 {
		return utils.NewValidationError("month", "must be between 1 and 12")
	}
	if input.Year < 2000 {
		return utils.NewValidationError("year", "must be a four-digit year")
	}
	if input.Target < 0 {
		return utils.NewValidationError("target", "must not be negative")
	}
	return nil
}

func obtainTargetLock(counsellorId, month, year int) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	key := fmt.Sprintf("leaderboard:target:%d:%d-%d", counsellorId, year, month)
	return locker.Obtain(config.GetRedisContext(), key, 5*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
}

type LeaderboardTargetResult struct {
	Action ActionType         `json:"action"`
	Record *LeaderboardTarget `json:"record"`
}

// SetLeaderboardTarget upserts the counsellor's target for one month.
// Managers set targets for their own counsellors; admins for anyone.
func SetLeaderboardTarget(ctx context.Context, input *NewLeaderboardTarget) (*LeaderboardTargetResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	role, _ := utils.GetRoleFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	if Role(role) != RoleAdmin && Role(role) != RoleManager {
		return nil, utils.NewValidationError("role", "only admins and managers can set targets")
	}

	counsellor, err := GetUserById(ctx, input.CounsellorId)
	if err != nil {
		return nil, err
	}
	if counsellor.Role != RoleCounsellor {
		return nil, utils.NewValidationError("counsellor_id", "not a counsellor")
	}
	if Role(role) == RoleManager && counsellor.ManagerId != userId {
		return nil, utils.NewValidationError("counsellor_id", "counsellor does not report to you")
	}

	lock, err := obtainTargetLock(input.CounsellorId, input.Month, input.Year)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer lock.Release(config.GetRedisContext())
	}

	managerId := counsellor.ManagerId
	if Role(role) == RoleManager {
		managerId = userId
	}

	achieved, err := countMonthEnrollments(ctx, input.CounsellorId, input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	action := ActionCreated
	var target LeaderboardTarget
	err = db.WithContext(ctx).
		Where("counsellor_id = ? AND month = ? AND year = ?", input.CounsellorId, input.Month, input.Year).
		Take(&target).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		target = LeaderboardTarget{
			ManagerId:      managerId,
			CounsellorId:   input.CounsellorId,
			Month:          input.Month,
			Year:           input.Year,
			Target:         input.Target,
			AchievedTarget: achieved,
		}
		if err := db.WithContext(ctx).Create(&target).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return nil, utils.NewConflictError("target", fmt.Sprintf("%d-%d", input.Year, input.Month))
			}
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		action = ActionUpdated
		target.ManagerId = managerId
		target.Target = input.Target
		target.AchievedTarget = achieved
		if err := db.WithContext(ctx).Save(&target).Error; err != nil {
			return nil, err
		}
	}
	return &LeaderboardTargetResult{Action: action, Record: &target}, nil
}

// countMonthEnrollments is the live enrollment count a target's achievement
// snapshot starts from.
func countMonthEnrollments(ctx context.Context, counsellorId, month, year int) (int, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	var count int64
	err := config.GetDB().WithContext(ctx).Model(&Client{}).
		Where("counsellor_id = ? AND archived = ?", counsellorId, false).
		Where("enrollment_date >= ? AND enrollment_date < ?", start, end).
		Count(&count).Error
	return int(count), err
}

// GetTargetsForMonth loads every stored target for one calendar month, keyed
// by counsellor id.
func GetTargetsForMonth(ctx context.Context, month, year int) (map[int]*LeaderboardTarget, error) {
	var targets []*LeaderboardTarget
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	byCounsellor := make(map[int]*LeaderboardTarget, len(targets))
	for _, t := range targets {
		byCounsellor[t.CounsellorId] = t
	}
	return byCounsellor, nil
}

// RecordTargetAchievement persists the computed achievement figures back onto
// the stored target row, if one exists for the month.
func RecordTargetAchievement(ctx context.Context, counsellorId, month, year, achieved int, revenue decimal.Decimal) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&LeaderboardTarget{}).
		Where("counsellor_id = ? AND month = ? AND year = ?", counsellorId, month, year).
		Updates(map[string]interface{}{
			"achieved_target": achieved,
			"revenue":         revenue,
		})
	return result.Error
}
