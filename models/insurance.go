package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Insurance struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Provider   string          `gorm:"size:100;not null" json:"provider"`
	PolicyNo   string          `gorm:"size:100" json:"policy_no"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	ExpiryDate *time.Time      `json:"expiry_date"`
	Remarks    string          `gorm:"type:text" json:"remarks"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i Insurance) GetId() int { return i.ID }

func (i Insurance) RevenueAmount() decimal.Decimal { return i.Amount }

type NewInsurance struct {
	Provider   string          `json:"provider"`
	PolicyNo   string          `json:"policy_no"`
	Amount     decimal.Decimal `json:"amount"`
	ExpiryDate *time.Time      `json:"expiry_date"`
	Remarks    string          `json:"remarks"`
}

func (input *NewInsurance) validate() error {
	if input.Provider == "" {
		return utils.NewValidationError("provider", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createInsurance(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewInsurance
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := Insurance{
		Provider:   input.Provider,
		PolicyNo:   input.PolicyNo,
		Amount:     input.Amount,
		ExpiryDate: input.ExpiryDate,
		Remarks:    input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateInsurance(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing Insurance
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Provider   *string          `json:"provider"`
		PolicyNo   *string          `json:"policy_no"`
		Amount     *decimal.Decimal `json:"amount"`
		ExpiryDate *time.Time       `json:"expiry_date"`
		Remarks    *string          `json:"remarks"`
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
	if patch.PolicyNo != nil {
		existing.PolicyNo = *patch.PolicyNo
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.ExpiryDate != nil {
		existing.ExpiryDate = patch.ExpiryDate
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
