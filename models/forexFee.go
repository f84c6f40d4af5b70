package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ForexSidePI = "PI"
	ForexSideTP = "TP"
)

type ForexFee struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Side        string          `gorm:"size:10;not null" json:"side"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Remarks     string          `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f ForexFee) GetId() int { return f.ID }

func (f ForexFee) RevenueAmount() decimal.Decimal { return f.Amount }

type NewForexFee struct {
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Remarks     string          `json:"remarks"`
}

func validForexSide(side string) bool {
	return side == ForexSidePI || side == ForexSideTP
}

func (input *NewForexFee) validate() error {
	if !validForexSide(input.Side) {
		return utils.NewValidationError("side", "must be PI or TP")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createForexFee(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewForexFee
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := ForexFee{
		Side:        input.Side,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Remarks:     input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateForexFee(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing ForexFee
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Side        *string          `json:"side"`
		Amount      *decimal.Decimal `json:"amount"`
		PaymentDate *time.Time       `json:"payment_date"`
		Remarks     *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.Side != nil {
		if !validForexSide(*patch.Side) {
			return utils.NewValidationError("side", "must be PI or TP")
		}
		existing.Side = *patch.Side
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.PaymentDate != nil {
		existing.PaymentDate = patch.PaymentDate
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
