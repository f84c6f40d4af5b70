package models

import (
	"testing"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePaymentCreateAndUpdate(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	now := time.Now()
	created, err := SavePayment(ctx, &NewPayment{
		ClientId:     client.ID,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(40000),
		TotalPayment: decimal.NewFromInt(100000),
		PaymentDate:  &now,
		InvoiceNo:    "INV-001",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, created.Action)

	updated, err := SavePayment(ctx, &NewPayment{
		ClientId:     client.ID,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(45000),
		TotalPayment: decimal.NewFromInt(100000),
		PaymentDate:  &now,
		InvoiceNo:    "INV-001",
		PaymentId:    created.Payment.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, updated.Action)
	assert.Equal(t, created.Payment.ID, updated.Payment.ID)
	assert.True(t, updated.Payment.Amount.Equal(decimal.NewFromInt(45000)))

	payments, err := GetPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestSavePaymentInvoiceUniqueness(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())
	other := createTestClient(t, ctx, counsellor.ID, time.Now())

	now := time.Now()
	_, err := SavePayment(ctx, &NewPayment{
		ClientId:     client.ID,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(40000),
		TotalPayment: decimal.NewFromInt(100000),
		PaymentDate:  &now,
		InvoiceNo:    "INV-001",
	})
	require.NoError(t, err)

	// uniqueness is global across the whole ledger, not per client
	_, err = SavePayment(ctx, &NewPayment{
		ClientId:     other.ID,
		Stage:        PaymentStageBeforeVisa,
		Amount:       decimal.NewFromInt(10000),
		TotalPayment: decimal.NewFromInt(50000),
		PaymentDate:  &now,
		InvoiceNo:    "INV-001",
	})
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
	assert.Contains(t, err.Error(), "INV-001")
}

func TestSavePaymentValidation(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	cases := []NewPayment{
		{ClientId: client.ID, Stage: "SHIPPED", Amount: decimal.NewFromInt(1), TotalPayment: decimal.NewFromInt(1), InvoiceNo: "X"},
		{ClientId: client.ID, Stage: PaymentStageInitial, Amount: decimal.Zero, TotalPayment: decimal.NewFromInt(1), InvoiceNo: "X"},
		{ClientId: client.ID, Stage: PaymentStageInitial, Amount: decimal.NewFromInt(1), TotalPayment: decimal.Zero, InvoiceNo: "X"},
		{ClientId: client.ID, Stage: PaymentStageInitial, Amount: decimal.NewFromInt(1), TotalPayment: decimal.NewFromInt(1), InvoiceNo: ""},
	}
	for _, input := range cases {
		_, err := SavePayment(ctx, &input)
		require.Error(t, err)
		assert.True(t, utils.IsValidationError(err), "expected validation error, got %v", err)
	}
}

func TestSavePaymentUnknownClient(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)

	_, err := SavePayment(ctx, &NewPayment{
		ClientId:     999,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(1),
		TotalPayment: decimal.NewFromInt(1),
		InvoiceNo:    "INV-404",
	})
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}
