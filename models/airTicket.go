package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edulinkhq/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AirTicket struct {
	ID         int             `gorm:"primary_key" json:"id"`
	TicketNo   string          `gorm:"size:100;uniqueIndex;not null" json:"ticket_no"`
	Airline    string          `gorm:"size:100" json:"airline"`
	Departure  string          `gorm:"size:100" json:"departure"`
	Arrival    string          `gorm:"size:100" json:"arrival"`
	TravelDate *time.Time      `json:"travel_date"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Remarks    string          `gorm:"type:text" json:"remarks"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a AirTicket) GetId() int { return a.ID }

func (a AirTicket) RevenueAmount() decimal.Decimal { return a.Amount }

type NewAirTicket struct {
	TicketNo   string          `json:"ticket_no"`
	Airline    string          `json:"airline"`
	Departure  string          `json:"departure"`
	Arrival    string          `json:"arrival"`
	TravelDate *time.Time      `json:"travel_date"`
	Amount     decimal.Decimal `json:"amount"`
	Remarks    string          `json:"remarks"`
}

func (input *NewAirTicket) validate() error {
	if input.TicketNo == "" {
		return utils.NewValidationError("ticket_no", "is required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

func createAirTicket(ctx context.Context, tx *gorm.DB, raw json.RawMessage) (int, error) {
	var input NewAirTicket
	if err := json.Unmarshal(raw, &input); err != nil {
		return 0, utils.NewValidationError("entity_data", err.Error())
	}
	if err := input.validate(); err != nil {
		return 0, err
	}
	if err := validateUniqueTx[AirTicket](ctx, tx, "ticket_no", input.TicketNo, 0); err != nil {
		return 0, err
	}
	row := AirTicket{
		TicketNo:   input.TicketNo,
		Airline:    input.Airline,
		Departure:  input.Departure,
		Arrival:    input.Arrival,
		TravelDate: input.TravelDate,
		Amount:     input.Amount,
		Remarks:    input.Remarks,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func updateAirTicket(ctx context.Context, tx *gorm.DB, id int, raw json.RawMessage) error {
	var existing AirTicket
	if err := tx.WithContext(ctx).Where("id = ?", id).Take(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	var patch struct {
		TicketNo   *string          `json:"ticket_no"`
		Airline    *string          `json:"airline"`
		Departure  *string          `json:"departure"`
		Arrival    *string          `json:"arrival"`
		TravelDate *time.Time       `json:"travel_date"`
		Amount     *decimal.Decimal `json:"amount"`
		Remarks    *string          `json:"remarks"`
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return utils.NewValidationError("entity_data", err.Error())
	}

	if patch.TicketNo != nil && *patch.TicketNo != existing.TicketNo {
		if *patch.TicketNo == "" {
			return utils.NewValidationError("ticket_no", "is required")
		}
		if err := validateUniqueTx[AirTicket](ctx, tx, "ticket_no", *patch.TicketNo, existing.ID); err != nil {
			return err
		}
		existing.TicketNo = *patch.TicketNo
	}
	if patch.Airline != nil {
		existing.Airline = *patch.Airline
	}
	if patch.Departure != nil {
		existing.Departure = *patch.Departure
	}
	if patch.Arrival != nil {
		existing.Arrival = *patch.Arrival
	}
	if patch.TravelDate != nil {
		existing.TravelDate = patch.TravelDate
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return utils.NewValidationError("amount", "must be greater than zero")
		}
		existing.Amount = *patch.Amount
	}
	if patch.Remarks != nil {
		existing.Remarks = *patch.Remarks
	}

	return tx.WithContext(ctx).Save(&existing).Error
}
