package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ForexCard struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Provider  string          `gorm:"size:100;not null" json:"provider"`
	CardNo    string          `gorm:"size:50" json:"card_no"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Remarks   string          `gorm:"type:text" json:"remarks"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f ForexCard) GetId() int { return f.ID }

func (f ForexCard) RevenueAmount() decimal.Decimal { return f.Amount }

type NewForexCard struct {
	Provider string          `json:"provider"`
	CardNo   string          `json:"card_no"`
	Amount   decimal.Decimal `json:"amount"`
	Remarks  string          `json:"remarks"`
}

func (input *NewForexCard) validate() error {
	if input.Provider == "" {
		return utils.NewValidationError("provider", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createForexCard(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewForexCard
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := ForexCard{
		Provider: input.Provider,
		CardNo:   input.CardNo,
		Amount:   input.Amount,
		Remarks:  input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateForexCard(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing ForexCard
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Provider *string          `json:"provider"`
		CardNo   *string          `json:"card_no"`
		Amount   *decimal.Decimal `json:"amount"`
		Remarks  *string          `json:"remarks"`
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
	if patch.CardNo != nil {
		existing.CardNo = *patch.CardNo
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
