package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductPayment is one row of the polymorphic product ledger. A master-only
// product carries its amount and dates directly on this row; an entity-backed
// product stores a (kind, id) pointer into the matching satellite table,
// which is then authoritative for amount, date and remarks.
type ProductPayment struct {
	ID          int              `gorm:"primary_key" json:"id"`
	ClientId    int              `gorm:"index;not null" json:"client_id"`
	ProductName ProductType      `gorm:"size:50;index;not null" json:"product_name"`
	EntityType  EntityKind       `gorm:"size:50;index;not null" json:"entity_type"`
	EntityId    *int             `gorm:"index" json:"entity_id"`
	Amount      *decimal.Decimal `gorm:"type:decimal(20,4)" json:"amount"`
	PaymentDate *time.Time       `json:"payment_date"`
	InvoiceNo   string           `gorm:"size:100" json:"invoice_no"`
	Remarks     string           `gorm:"type:text" json:"remarks"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Entity is the resolved satellite record, attached on read. Nil for
	// master-only products and for soft-failed lookups.
	Entity interface{} `gorm:"-" json:"entity"`
}

type NewProductPayment struct {
	ClientId    int              `json:"client_id" binding:"required"`
	ProductName ProductType      `json:"product_name" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *time.Time       `json:"payment_date"`
	InvoiceNo   string           `json:"invoice_no"`
	Remarks     string           `json:"remarks"`
	EntityData  json.RawMessage  `json:"entity_data"`
	// ProductPaymentId switches the call into the update path.
	ProductPaymentId int `json:"product_payment_id"`
}

type ProductPaymentResult struct {
	Action ActionType      `json:"action"`
	Record *ProductPayment `json:"record"`
}

// entityOps is the per-kind dispatch table. The entity type written to the
// ledger always comes from ProductEntityKinds, never from the caller.
type entityOps struct {
	create func(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error)
	update func(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error
	fetch  func(ctx context.Context, db *gorm.DB, ids []int) (map[int]interface{}, error)
}

var entityRegistry = map[EntityKind]entityOps{
	EntityKindFinanceEmployment: {createFinanceEmployment, updateFinanceEmployment, fetchEntityMap[FinanceEmployment]},
	EntityKindSimCardActivation: {createSimCardActivation, updateSimCardActivation, fetchEntityMap[SimCardActivation]},
	EntityKindAirTicket:         {createAirTicket, updateAirTicket, fetchEntityMap[AirTicket]},
	EntityKindInsurance:         {createInsurance, updateInsurance, fetchEntityMap[Insurance]},
	EntityKindLoan:              {createLoan, updateLoan, fetchEntityMap[Loan]},
	EntityKindVisaExtension:     {createVisaExtension, updateVisaExtension, fetchEntityMap[VisaExtension]},
	EntityKindForexFee:          {createForexFee, updateForexFee, fetchEntityMap[ForexFee]},
	EntityKindForexCard:         {createForexCard, updateForexCard, fetchEntityMap[ForexCard]},
	EntityKindTuitionFee:        {createTuitionFee, updateTuitionFee, fetchEntityMap[TuitionFee]},
	EntityKindCreditCard:        {createCreditCard, updateCreditCard, fetchEntityMap[CreditCard]},
	EntityKindNewSell:           {createNewSell, updateNewSell, fetchEntityMap[NewSell]},
	EntityKindBeaconAccount:     {createBeaconAccount, updateBeaconAccount, fetchEntityMap[BeaconAccount]},
}

func entityOpsFor(kind EntityKind) (entityOps, bool) {
	ops, ok := entityRegistry[kind]
	return ops, ok
}

// amountBearer is implemented by satellite records whose amount counts toward
// revenue. Status trackers (tuition fee, credit card) don't implement it.
type amountBearer interface {
	RevenueAmount() decimal.Decimal
}

// EntityAmount extracts the revenue amount from a resolved satellite record,
// zero when the record is nil or carries no amount.
func EntityAmount(entity interface{}) decimal.Decimal {
	if bearer, ok := entity.(amountBearer); ok {
		return bearer.RevenueAmount()
	}
	return decimal.Zero
}

// ResolvedAmount is the monetary value of a rehydrated ledger row: the row's
// own amount for master-only products, the satellite record's amount
// otherwise. A soft-failed (nil) entity counts as zero, not as an error.
func (pp *ProductPayment) ResolvedAmount() decimal.Decimal {
	if pp.EntityType == EntityKindMasterOnly {
		if pp.Amount != nil {
			return *pp.Amount
		}
		return decimal.Zero
	}
	return EntityAmount(pp.Entity)
}

// validateUniqueTx mirrors utils.ValidateUnique but runs inside the caller's
// transaction so the check and the insert cannot be split by a competing
// commit.
func validateUniqueTx[T any](ctx context.Context, tx *gorm.DB, column string, value interface{}, exceptId int) error {
	var model T
	var count int64
	query := tx.WithContext(ctx).Model(&model).Where(column+" = ?", value)
	if exceptId > 0 {
		query = query.Where("NOT id = ?", exceptId)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.NewConflictError(column, fmt.Sprint(value))
	}
	return nil
}

// SaveProductPayment writes one product sale: the ledger row plus, for
// entity-backed products, the satellite row, in a single transaction. With
// ProductPaymentId set it updates the existing pair instead.
func SaveProductPayment(ctx context.Context, input *NewProductPayment) (*ProductPaymentResult, error) {
	kind, ok := ProductEntityKinds[input.ProductName]
	if !ok {
		return nil, utils.NewValidationError("product_name", "unknown product type "+string(input.ProductName))
	}

	client, err := GetClientById(ctx, input.ClientId)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(client.Archived) {
		return nil, utils.NewValidationError("client_id", "client is archived")
	}

	if input.ProductPaymentId > 0 {
		return updateProductPayment(ctx, client, kind, input)
	}
	return createProductPayment(ctx, client, kind, input)
}

func createProductPayment(ctx context.Context, client *Client, kind EntityKind, input *NewProductPayment) (*ProductPaymentResult, error) {
	db := config.GetDB()
	tx := db.Begin()

	row := ProductPayment{
		ClientId:    input.ClientId,
		ProductName: input.ProductName,
		EntityType:  kind,
	}

	if kind == EntityKindMasterOnly {
		if input.Amount == nil || !input.Amount.IsPositive() {
			tx.Rollback()
			return nil, utils.NewValidationError("amount", "must be greater than zero")
		}
		row.Amount = input.Amount
		row.PaymentDate = input.PaymentDate
		row.InvoiceNo = input.InvoiceNo
		row.Remarks = input.Remarks
	} else {
		if len(input.EntityData) == 0 {
			tx.Rollback()
			return nil, utils.NewValidationError("entity_data", "is required for "+string(input.ProductName))
		}
		ops, _ := entityOpsFor(kind)
		entityId, err := ops.create(ctx, tx, input.EntityData)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		row.EntityId = &entityId
	}

	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := queueClientNotification(ctx, tx, "product_payment.created", client.ID, client.CounsellorId, row.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	ResolveEntities(ctx, []*ProductPayment{&row})
	return &ProductPaymentResult{Action: ActionCreated, Record: &row}, nil
}

func updateProductPayment(ctx context.Context, client *Client, kind EntityKind, input *NewProductPayment) (*ProductPaymentResult, error) {
	db := config.GetDB()

	var existing ProductPayment
	if err := db.WithContext(ctx).Where("id = ?", input.ProductPaymentId).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	// a ledger row belongs to exactly one client; a payment id paired with a
	// different client id is treated as not found, not as a transfer
	if existing.ClientId != input.ClientId {
		return nil, utils.ErrorRecordNotFound
	}
	if existing.ProductName != input.ProductName {
		return nil, utils.NewValidationError("product_name", "cannot change the product of an existing payment")
	}

	tx := db.Begin()

	if kind == EntityKindMasterOnly {
		if input.Amount == nil || !input.Amount.IsPositive() {
			tx.Rollback()
			return nil, utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = input.Amount
		existing.PaymentDate = input.PaymentDate
		existing.InvoiceNo = input.InvoiceNo
		existing.Remarks = input.Remarks
	} else {
		// the satellite row is authoritative; ledger-only fields in the
		// payload are ignored and the remainder applied as a partial update.
		if len(input.EntityData) > 0 {
			if existing.EntityId == nil {
				tx.Rollback()
				return nil, utils.NewValidationError("entity_data", "payment has no entity record")
			}
			ops, _ := entityOpsFor(kind)
			if err := ops.update(ctx, tx, *existing.EntityId, input.EntityData); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.WithContext(ctx).Save(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := queueClientNotification(ctx, tx, "product_payment.updated", client.ID, client.CounsellorId, existing.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	ResolveEntities(ctx, []*ProductPayment{&existing})
	return &ProductPaymentResult{Action: ActionUpdated, Record: &existing}, nil
}
