package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceEmployment backs the designated core product
// (ALL_FINANCE_EMPLOYEMENT).
type FinanceEmployment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	InvoiceNo   string          `gorm:"size:100" json:"invoice_no"`
	Remarks     string          `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f FinanceEmployment) GetId() int { return f.ID }

func (f FinanceEmployment) RevenueAmount() decimal.Decimal { return f.Amount }

type NewFinanceEmployment struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	InvoiceNo   string          `json:"invoice_no"`
	Remarks     string          `json:"remarks"`
}

func (input *NewFinanceEmployment) validate() error {
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createFinanceEmployment(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewFinanceEmployment
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := FinanceEmployment{
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		InvoiceNo:   input.InvoiceNo,
		Remarks:     input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateFinanceEmployment(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing FinanceEmployment
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Amount      *decimal.Decimal `json:"amount"`
		PaymentDate *time.Time       `json:"payment_date"`
		InvoiceNo   *string          `json:"invoice_no"`
		Remarks     *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
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
	if patch.InvoiceNo != nil {
		existing.InvoiceNo = *patch.InvoiceNo
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
