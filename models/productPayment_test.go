package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEntityKindsCoversEveryProduct(t *testing.T) {
	products := []ProductType{
		ProductAllFinanceEmployment, ProductSimCardActivation, ProductAirTicket,
		ProductInsurance, ProductLoan, ProductVisaExtension, ProductForexFees,
		ProductForexCard, ProductTuitionFees, ProductCreditCard, ProductNewSell,
		ProductBeaconAccount, ProductBankBalanceCertificate, ProductDocumentCourier,
	}
	for _, p := range products {
		kind, ok := ProductEntityKinds[p]
		require.True(t, ok, "no entity kind for %s", p)
		if kind != EntityKindMasterOnly {
			_, ok := entityOpsFor(kind)
			assert.True(t, ok, "no dispatch entry for %s", kind)
		}
	}
}

func TestSaveProductPaymentMasterOnly(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	amount := decimal.NewFromInt(2500)
	result, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductBankBalanceCertificate,
		Amount:      &amount,
		InvoiceNo:   "BBC-001",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, result.Action)
	assert.Equal(t, EntityKindMasterOnly, result.Record.EntityType)
	assert.Nil(t, result.Record.EntityId)

	rows, err := GetProductPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Amount)
	assert.True(t, rows[0].Amount.Equal(amount))
	assert.Nil(t, rows[0].Entity)
}

func TestSaveProductPaymentMasterOnlyRequiresPositiveAmount(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductDocumentCourier,
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))

	zero := decimal.Zero
	_, err = SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductDocumentCourier,
		Amount:      &zero,
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveProductPaymentUnknownProduct(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)

	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    1,
		ProductName: ProductType("HOVERCRAFT"),
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveProductPaymentForexFee(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	// empty side must be rejected with no partial write
	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"","amount":1500}`),
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))

	rows, err := GetProductPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	result, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"PI","amount":1500}`),
	})
	require.NoError(t, err)
	assert.Equal(t, EntityKindForexFee, result.Record.EntityType)
	require.NotNil(t, result.Record.EntityId)
	// satellite row is authoritative: no amount on the ledger row
	assert.Nil(t, result.Record.Amount)

	rows, err = GetProductPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	fee, ok := rows[0].Entity.(ForexFee)
	require.True(t, ok, "expected ForexFee entity, got %T", rows[0].Entity)
	assert.Equal(t, "PI", fee.Side)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(1500)))
}

func TestSaveProductPaymentAirTicketUniqueness(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	input := &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductAirTicket,
		EntityData:  json.RawMessage(`{"ticket_no":"TK-100","airline":"Thai Airways","amount":800}`),
	}
	_, err := SaveProductPayment(ctx, input)
	require.NoError(t, err)

	_, err = SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductAirTicket,
		EntityData:  json.RawMessage(`{"ticket_no":"TK-100","airline":"Emirates","amount":950}`),
	})
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
	assert.Contains(t, err.Error(), "TK-100")
}

func TestUpdateProductPaymentIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	created, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"PI","amount":1500}`),
	})
	require.NoError(t, err)

	update := &NewProductPayment{
		ClientId:         client.ID,
		ProductName:      ProductForexFees,
		ProductPaymentId: created.Record.ID,
		EntityData:       json.RawMessage(`{"side":"TP","amount":2000}`),
	}
	first, err := SaveProductPayment(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, first.Action)

	second, err := SaveProductPayment(ctx, update)
	require.NoError(t, err)

	// same satellite row, same stored state, no second row
	assert.Equal(t, first.Record.EntityId, second.Record.EntityId)
	var feeCount int64
	require.NoError(t, db.Model(&ForexFee{}).Count(&feeCount).Error)
	assert.Equal(t, int64(1), feeCount)

	fee := second.Record.Entity.(ForexFee)
	assert.Equal(t, "TP", fee.Side)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(2000)))
}

func TestUpdateProductPaymentCannotChangeProduct(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	created, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"PI","amount":1500}`),
	})
	require.NoError(t, err)

	_, err = SaveProductPayment(ctx, &NewProductPayment{
		ClientId:         client.ID,
		ProductName:      ProductLoan,
		ProductPaymentId: created.Record.ID,
		EntityData:       json.RawMessage(`{"bank":"KBZ","amount":9000}`),
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestUpdateProductPaymentOtherClientRejected(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	owner := createTestClient(t, ctx, counsellor.ID, time.Now())
	other := createTestClient(t, ctx, counsellor.ID, time.Now())

	created, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    owner.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"PI","amount":1500}`),
	})
	require.NoError(t, err)

	// another client's id paired with the owner's payment id must not touch
	// the owner's row
	_, err = SaveProductPayment(ctx, &NewProductPayment{
		ClientId:         other.ID,
		ProductName:      ProductForexFees,
		ProductPaymentId: created.Record.ID,
		EntityData:       json.RawMessage(`{"side":"TP","amount":9999}`),
	})
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))

	rows, err := GetProductPaymentsByClient(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	fee := rows[0].Entity.(ForexFee)
	assert.Equal(t, "PI", fee.Side)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(1500)))
}

func TestSaveProductPaymentArchivedClient(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())
	require.NoError(t, ArchiveClient(ctx, client.ID))

	amount := decimal.NewFromInt(100)
	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductBankBalanceCertificate,
		Amount:      &amount,
	})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}
