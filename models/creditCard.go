package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"gorm.io/gorm"
)

const (
	CreditCardStatusApplied  = "applied"
	CreditCardStatusApproved = "approved"
	CreditCardStatusRejected = "rejected"
)

// CreditCard is a status tracker: it carries no amount and never contributes
// to revenue totals.
type CreditCard struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Bank      string    `gorm:"size:100;not null" json:"bank"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Remarks   string    `gorm:"type:text" json:"remarks"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c CreditCard) GetId() int { return c.ID }

type NewCreditCard struct {
	Bank    string `json:"bank"`
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func validCreditCardStatus(status string) bool {
	switch status {
	case CreditCardStatusApplied, CreditCardStatusApproved, CreditCardStatusRejected:
		return true
	}
	return false
}

func (input *NewCreditCard) validate() error {
	if input.Bank == "" {
		return utils.NewValidationError("bank", "is required")
	}
	if !validCreditCardStatus(input.Status) {
		return utils.NewValidationError("status", "must be applied, approved or rejected")
	}
	return nil
}

func createCreditCard(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewCreditCard
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	row := CreditCard{
		Bank:    input.Bank,
		Status:  input.Status,
		Remarks: input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateCreditCard(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing CreditCard
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		Bank    *string `json:"bank"`
		Status  *string `json:"status"`
		Remarks *string `json:"remarks"`
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
	if patch.Status != nil {
		if !validCreditCardStatus(*patch.Status) {
			return utils.NewValidationError("status", "must be applied, approved or rejected")
		}
		existing.Status = *patch.Status
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
