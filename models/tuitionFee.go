package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"gorm.io/gorm"
)

const (
	TuitionFeeStatusPaid    = "paid"
	TuitionFeeStatusPending = "pending"
)

// TuitionFee is a status tracker: it carries no amount and never contributes
// to revenue totals.
type TuitionFee struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	Institution string    `gorm:"size:255" json:"institution"`
	Semester    string    `gorm:"size:50" json:"semester"`
	Remarks     string    `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t TuitionFee) GetId() int { return t.ID }

type NewTuitionFee struct {
	Status      string `json:"status"`
	Institution string `json:"institution"`
	Semester    string `json:"semester"`
	Remarks     string `json:"remarks"`
}

// status values are lowercase only; "Paid" is rejected.
func validTuitionFeeStatus(status string) bool {
	return status == TuitionFeeStatusPaid || status == TuitionFeeStatusPending
}

func (input *NewTuitionFee) validate() error {
	if !validTuitionFeeStatus(input.Status) {
		return utils.NewValidationError("status", "must be paid or pending")
	}
	return nil
}

func createTuitionFee(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewTuitionFee
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := TuitionFee{
		Status:      input.Status,
		Institution: input.Institution,
		Semester:    input.Semester,
		Remarks:     input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateTuitionFee(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing TuitionFee
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Status      *string `json:"status"`
		Institution *string `json:"institution"`
		Semester    *string `json:"semester"`
		Remarks     *string `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.Status != nil {
		if !validTuitionFeeStatus(*patch.Status) {
			return utils.NewValidationError("status", "must be paid or pending")
		}
		existing.Status = *patch.Status
	}
	if patch.Institution != nil {
		existing.Institution = *patch.Institution
	}
	if patch.Semester != nil {
		existing.Semester = *patch.Semester
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
