package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEntitiesAcrossKinds(t *testing.T) {
	setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	amount := decimal.NewFromInt(300)
	inputs := []*NewProductPayment{
		{ClientId: client.ID, ProductName: ProductForexFees, EntityData: json.RawMessage(`{"side":"PI","amount":1500}`)},
		{ClientId: client.ID, ProductName: ProductAirTicket, EntityData: json.RawMessage(`{"ticket_no":"TK-1","amount":800}`)},
		{ClientId: client.ID, ProductName: ProductLoan, EntityData: json.RawMessage(`{"bank":"KBZ","amount":90000}`)},
		{ClientId: client.ID, ProductName: ProductBankBalanceCertificate, Amount: &amount},
	}
	for _, input := range inputs {
		_, err := SaveProductPayment(ctx, input)
		require.NoError(t, err)
	}

	rows, err := GetProductPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byProduct := make(map[ProductType]*ProductPayment)
	for _, row := range rows {
		byProduct[row.ProductName] = row
	}

	assert.IsType(t, ForexFee{}, byProduct[ProductForexFees].Entity)
	assert.IsType(t, AirTicket{}, byProduct[ProductAirTicket].Entity)
	assert.IsType(t, Loan{}, byProduct[ProductLoan].Entity)
	assert.Nil(t, byProduct[ProductBankBalanceCertificate].Entity)
}

func TestResolveEntitiesSoftFailsPerKind(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxWithUser(1, RoleAdmin)
	counsellor := createTestCounsellor(t, ctx, "c1@edulink.local", 0)
	client := createTestClient(t, ctx, counsellor.ID, time.Now())

	_, err := SaveProductPayment(ctx, &NewProductPayment{
		ClientId: client.ID, ProductName: ProductForexFees,
		EntityData: json.RawMessage(`{"side":"PI","amount":1500}`),
	})
	require.NoError(t, err)
	_, err = SaveProductPayment(ctx, &NewProductPayment{
		ClientId: client.ID, ProductName: ProductAirTicket,
		EntityData: json.RawMessage(`{"ticket_no":"TK-1","amount":800}`),
	})
	require.NoError(t, err)

	// a broken satellite table degrades that kind to nil entities instead of
	// failing the whole listing
	require.NoError(t, db.Migrator().DropTable(&AirTicket{}))

	rows, err := GetProductPaymentsByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		switch row.ProductName {
		case ProductForexFees:
			assert.NotNil(t, row.Entity)
		case ProductAirTicket:
			assert.Nil(t, row.Entity)
			assert.True(t, row.ResolvedAmount().IsZero())
		}
	}
}

func TestResolvedAmount(t *testing.T) {
	amount := decimal.NewFromInt(500)
	master := &ProductPayment{EntityType: EntityKindMasterOnly, Amount: &amount}
	assert.True(t, master.ResolvedAmount().Equal(amount))

	entityBacked := &ProductPayment{
		EntityType: EntityKindForexFee,
		Entity:     ForexFee{Side: ForexSidePI, Amount: decimal.NewFromInt(1500)},
	}
	assert.True(t, entityBacked.ResolvedAmount().Equal(decimal.NewFromInt(1500)))

	// status trackers carry no amount
	tracker := &ProductPayment{
		EntityType: EntityKindCreditCard,
		Entity:     CreditCard{Bank: "KBZ", Status: CreditCardStatusApplied},
	}
	assert.True(t, tracker.ResolvedAmount().IsZero())

	// soft-failed entity counts as zero, not as an error
	missing := &ProductPayment{EntityType: EntityKindAirTicket}
	assert.True(t, missing.ResolvedAmount().IsZero())
}
