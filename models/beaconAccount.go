package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BeaconAccount struct {
	ID         int             `gorm:"primary_key" json:"id"`
	AccountNo  string          `gorm:"size:100;not null" json:"account_no"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	OpenedDate *time.Time      `json:"opened_date"`
	Remarks    string          `gorm:"type:text" json:"remarks"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b BeaconAccount) GetId() int { return b.ID }

func (b BeaconAccount) RevenueAmount() decimal.Decimal { return b.Amount }

type NewBeaconAccount struct {
	AccountNo  string          `json:"account_no"`
	Amount     decimal.Decimal `json:"amount"`
	OpenedDate *time.Time      `json:"opened_date"`
	Remarks    string          `json:"remarks"`
}

func (input *NewBeaconAccount) validate() error {
	if input.AccountNo == "" {
		return utils.NewValidationError("account_no", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createBeaconAccount(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewBeaconAccount
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := BeaconAccount{
		AccountNo:  input.AccountNo,
		Amount:     input.Amount,
		OpenedDate: input.OpenedDate,
		Remarks:    input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateBeaconAccount(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing BeaconAccount
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		AccountNo  *string          `json:"account_no"`
		Amount     *decimal.Decimal `json:"amount"`
		OpenedDate *time.Time       `json:"opened_date"`
		Remarks    *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.AccountNo != nil {
		if *patch.AccountNo == "" {
			return utils.NewValidationError("account_no", "is required")
		}
		existing.AccountNo = *patch.AccountNo
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.OpenedDate != nil {
		existing.OpenedDate = patch.OpenedDate
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
