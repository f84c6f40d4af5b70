package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteQueuesOutboxRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	date := time.Now()
	_, err := SavePayment(ctx, &NewPayment{
		ClientId:     client.ID,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(40000),
		TotalPayment: decimal.NewFromInt(100000),
		PaymentDate:  &date,
		InvoiceNo:    "INV-1",
	})
	require.NoError(t, err)

	var records []NotificationRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 2)

	channels := []string{records[0].Channel, records[1].Channel}
	assert.Contains(t, channels, CounsellorChannel(counsellor.ID))
	assert.Contains(t, channels, AdminChannel)
	for _, record := range records {
		assert.False(t, record.Published)
	}
}

func TestFailedWriteQueuesNothing(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	// invalid side fails satellite validation; the outbox row must roll
	// back with the rest of the transaction
	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId:    client.ID,
		ProductName: ProductForexFees,
		EntityData:  json.RawMessage(`{"side":"XX","amount":1500}`),
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&NotificationRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDispatchMarksRowsPublished(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	date := time.Now()
	_, err := SavePayment(ctx, &NewPayment{
		ClientId:     client.ID,
		Stage:        PaymentStageInitial,
		Amount:       decimal.NewFromInt(40000),
		TotalPayment: decimal.NewFromInt(100000),
		PaymentDate:  &date,
		InvoiceNo:    "INV-1",
	})
	require.NoError(t, err)

	dispatched, err := DispatchPendingNotifications(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, dispatched)

	var pending int64
	require.NoError(t, db.Model(&NotificationRecord{}).
		Where("published = ?", false).Count(&pending).Error)
	assert.Zero(t, pending)

	// second pass finds nothing
	dispatched, err = DispatchPendingNotifications(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, dispatched)
}
