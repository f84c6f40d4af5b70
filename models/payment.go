package models

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one row of the staged-payment ledger backing the core
// recurring sale. TotalPayment is the client's expected contract total and is
// repeated on every stage row for that client.
type Payment struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ClientId     int             `gorm:"index;not null" json:"client_id"`
	TotalPayment decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_payment"`
	Stage        PaymentStage    `gorm:"size:20;index;not null" json:"stage"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate  *time.Time      `gorm:"index" json:"payment_date"`
	InvoiceNo    string          `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	Remarks      string          `gorm:"type:text" json:"remarks"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	ClientId     int             `json:"client_id" binding:"required"`
	Stage        PaymentStage    `json:"stage" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	TotalPayment decimal.Decimal `json:"total_payment" binding:"required"`
	PaymentDate  *time.Time      `json:"payment_date"`
	InvoiceNo    string          `json:"invoice_no" binding:"required"`
	Remarks      string          `json:"remarks"`
	// PaymentId switches the call into the update path.
	PaymentId int `json:"payment_id"`
}

type PaymentResult struct {
	Action  ActionType `json:"action"`
	Payment *Payment   `json:"payment"`
}

func (input *NewPayment) validate(ctx context.Context) error {
	if !input.Stage.Valid() {
		return utils.NewValidationError("stage", "must be one of INITIAL, BEFORE_VISA, AFTER_VISA, SUBMITTED_VISA")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	if !input.TotalPayment.IsPositive() {
		return utils.NewValidationError("total_payment", "must be greater than zero")
	}
	if input.InvoiceNo == "" {
		return utils.NewValidationError("invoice_no", "is required")
	}
	client, err := GetClientById(ctx, input.ClientId)
	if err != nil {
		return err
	}
	if utils.DereferencePtr(client.Archived) {
		return utils.NewValidationError("client_id", "client is archived")
	}
	return nil
}

// SavePayment creates a stage row, or updates one when PaymentId is set.
// InvoiceNo is unique across the whole ledger; assignment is serialized with
// a redis lock so two concurrent saves cannot both pass the uniqueness check.
func SavePayment(ctx context.Context, input *NewPayment) (*PaymentResult, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	unlock, err := obtainInvoiceLock(ctx, input.InvoiceNo)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if input.PaymentId > 0 {
		return updatePayment(ctx, input)
	}
	return createPayment(ctx, input)
}

func createPayment(ctx context.Context, input *NewPayment) (*PaymentResult, error) {
	if err := utils.ValidateUnique[Payment](ctx, "invoice_no", input.InvoiceNo, 0); err != nil {
		return nil, err
	}

	payment := Payment{
		ClientId:     input.ClientId,
		TotalPayment: input.TotalPayment,
		Stage:        input.Stage,
		Amount:       input.Amount,
		PaymentDate:  input.PaymentDate,
		InvoiceNo:    input.InvoiceNo,
		Remarks:      input.Remarks,
	}

	client, err := GetClientById(ctx, input.ClientId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		// a concurrent writer can still beat the pre-check to the unique index
		if utils.IsDuplicateKeyError(err) {
			return nil, utils.NewConflictError("invoice_no", input.InvoiceNo)
		}
		return nil, err
	}
	if err := queueClientNotification(ctx, tx, "payment.created", client.ID, client.CounsellorId, payment.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &PaymentResult{Action: ActionCreated, Payment: &payment}, nil
}

func updatePayment(ctx context.Context, input *NewPayment) (*PaymentResult, error) {
	var existing Payment
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", input.PaymentId).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if input.InvoiceNo != existing.InvoiceNo {
		if err := utils.ValidateUnique[Payment](ctx, "invoice_no", input.InvoiceNo, existing.ID); err != nil {
			return nil, err
		}
	}

	client, err := GetClientById(ctx, input.ClientId)
	if err != nil {
		return nil, err
	}

	existing.ClientId = input.ClientId
	existing.TotalPayment = input.TotalPayment
	existing.Stage = input.Stage
	existing.Amount = input.Amount
	existing.PaymentDate = input.PaymentDate
	existing.InvoiceNo = input.InvoiceNo
	existing.Remarks = input.Remarks

	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := queueClientNotification(ctx, tx, "payment.updated", client.ID, client.CounsellorId, existing.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &PaymentResult{Action: ActionUpdated, Payment: &existing}, nil
}

// obtainInvoiceLock serializes saves on the same invoice number. Degrades to
// a no-op when redis is not connected (single-node dev and tests).
func obtainInvoiceLock(ctx context.Context, invoiceNo string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, "payment:invoice:"+invoiceNo, 10*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return nil, utils.NewConflictError("invoice_no", invoiceNo)
	} else if err != nil {
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}

func GetPaymentsByClient(ctx context.Context, clientId int) ([]*Payment, error) {
	var payments []*Payment
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("client_id = ?", clientId).
		Order("payment_date, id").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
