package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VisaExtension struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceNo   string          `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	VisaType    string          `gorm:"size:100;not null" json:"visa_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Remarks     string          `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v VisaExtension) GetId() int { return v.ID }

func (v VisaExtension) RevenueAmount() decimal.Decimal { return v.Amount }

type NewVisaExtension struct {
	InvoiceNo   string          `json:"invoice_no"`
	VisaType    string          `json:"visa_type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Remarks     string          `json:"remarks"`
}

func (input *NewVisaExtension) validate() error {
	if input.InvoiceNo == "" {
		return utils.NewValidationError("invoice_no", "is required")
	}
	if input.VisaType == "" {
		return utils.NewValidationError("visa_type", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createVisaExtension(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewVisaExtension
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	if err := validateUniqueTx[VisaExtension](ctx, tx, "invoice_no", input.InvoiceNo, 0); err != nil {
		return 0, err
	}
	row := VisaExtension{
		InvoiceNo:   input.InvoiceNo,
		VisaType:    input.VisaType,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Remarks:     input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateVisaExtension(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing VisaExtension
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		InvoiceNo   *string          `json:"invoice_no"`
		VisaType    *string          `json:"visa_type"`
		Amount      *decimal.Decimal `json:"amount"`
		PaymentDate *time.Time       `json:"payment_date"`
		Remarks     *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.InvoiceNo != nil && *patch.InvoiceNo != existing.InvoiceNo {
		if *patch.InvoiceNo == "" {
			return utils.NewValidationError("invoice_no", "is required")
		}
		if err := validateUniqueTx[VisaExtension](ctx, tx, "invoice_no", *patch.InvoiceNo, existing.ID); err != nil {
			return err
		}
		existing.InvoiceNo = *patch.InvoiceNo
	}
	if patch.VisaType != nil {
		if *patch.VisaType == "" {
			return utils.NewValidationError("visa_type", "is required")
		}
		existing.VisaType = *patch.VisaType
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
