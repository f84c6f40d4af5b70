package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SimCardActivation struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Provider       string          `gorm:"size:100;not null" json:"provider"`
	SimNumber      string          `gorm:"size:50" json:"sim_number"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	ActivationDate *time.Time      `json:"activation_date"`
	Remarks        string          `gorm:"type:text" json:"remarks"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s SimCardActivation) GetId() int { return s.ID }

func (s SimCardActivation) RevenueAmount() decimal.Decimal { return s.Amount }

type NewSimCardActivation struct {
	Provider       string          `json:"provider"`
	SimNumber      string          `json:"sim_number"`
	Amount         decimal.Decimal `json:"amount"`
	ActivationDate *time.Time      `json:"activation_date"`
	Remarks        string          `json:"remarks"`
}

func (input *NewSimCardActivation) validate() error {
	if input.Provider == "" {
		return utils.NewValidationError("provider", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createSimCardActivation(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewSimCardActivation
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := SimCardActivation{
		Provider:       input.Provider,
		SimNumber:      input.SimNumber,
		Amount:         input.Amount,
		ActivationDate: input.ActivationDate,
		Remarks:        input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateSimCardActivation(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing SimCardActivation
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Provider       *string          `json:"provider"`
		SimNumber      *string          `json:"sim_number"`
		Amount         *decimal.Decimal `json:"amount"`
		ActivationDate *time.Time       `json:"activation_date"`
		Remarks        *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.Provider != nil {
		if *patch.Provider == "" {
			return utils.NewValidationError("provider", "is required")
		}
		existing.Provider = *patch.Provider
	}
	if patch.SimNumber != nil {
		existing.SimNumber = *patch.SimNumber
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.ActivationDate != nil {
		existing.ActivationDate = patch.ActivationDate
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
