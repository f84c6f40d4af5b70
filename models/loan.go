package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Loan struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Bank          string          `gorm:"size:100;not null" json:"bank"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DisbursedDate *time.Time      `json:"disbursed_date"`
	Remarks       string          `gorm:"type:text" json:"remarks"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l Loan) GetId() int { return l.ID }

func (l Loan) RevenueAmount() decimal.Decimal { return l.Amount }

type NewLoan struct {
	Bank          string          `json:"bank"`
	Amount        decimal.Decimal `json:"amount"`
	DisbursedDate *time.Time      `json:"disbursed_date"`
	Remarks       string          `json:"remarks"`
}

func (input *NewLoan) validate() error {
	if input.Bank == "" {
		return utils.NewValidationError("bank", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createLoan(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewLoan
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := Loan{
		Bank:          input.Bank,
		Amount:        input.Amount,
		DisbursedDate: input.DisbursedDate,
		Remarks:       input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateLoan(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing Loan
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Bank          *string          `json:"bank"`
		Amount        *decimal.Decimal `json:"amount"`
		DisbursedDate *time.Time       `json:"disbursed_date"`
		Remarks       *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.Bank != nil {
		if *patch.Bank == "" {
			return utils.NewValidationError("bank", "is required")
		}
		existing.Bank = *patch.Bank
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.DisbursedDate != nil {
		existing.DisbursedDate = patch.DisbursedDate
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
