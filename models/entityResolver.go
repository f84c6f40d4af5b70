package models

import (
	"context"

	"github.com/edulinkhq/crm_backend/config"
	"gorm.io/gorm"
)

// Identifier is implemented by every satellite record so batch results can be
// merged back onto ledger rows.
type Identifier interface {
	GetId() int
}

// fetchEntityMap runs one WHERE id IN query for a satellite table and returns
// an id -> record map. Missing ids are simply absent from the map.
func fetchEntityMap[T Identifier](ctx context.Context, db *gorm.DB, ids []int) (map[int]interface{}, error) {
	var rows []T
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[int]interface{}, len(rows))
	for _, row := range rows {
		result[row.GetId()] = row
	}
	return result, nil
}

// ResolveEntities rehydrates a batch of ledger rows: partition by entity
// kind, one batch fetch per kind, merge back. A fetch failure for one kind
// degrades that kind's entities to nil instead of failing the whole batch;
// ledger and satellite tables are logically one aggregate but a corrupt
// satellite row must not block the client's entire payment list.
func ResolveEntities(ctx context.Context, rows []*ProductPayment) {
	db := config.GetDB()
	logger := config.GetLogger()

	idsByKind := make(map[EntityKind][]int)
	for _, row := range rows {
		if row.EntityType == EntityKindMasterOnly || row.EntityId == nil {
			continue
		}
		idsByKind[row.EntityType] = append(idsByKind[row.EntityType], *row.EntityId)
	}

	recordsByKind := make(map[EntityKind]map[int]interface{}, len(idsByKind))
	for kind, ids := range idsByKind {
		ops, ok := entityOpsFor(kind)
		if !ok {
			continue
		}
		records, err := ops.fetch(ctx, db, ids)
		if err != nil {
			config.LogError(logger, "models", "ResolveEntities", "batch fetch failed, degrading to nil entities", string(kind), err)
			continue
		}
		recordsByKind[kind] = records
	}

	for _, row := range rows {
		if row.EntityType == EntityKindMasterOnly || row.EntityId == nil {
			continue
		}
		if records, ok := recordsByKind[row.EntityType]; ok {
			row.Entity = records[*row.EntityId]
		}
	}
}

// GetProductPaymentsByClient returns the client's ledger rows with satellite
// records attached.
func GetProductPaymentsByClient(ctx context.Context, clientId int) ([]*ProductPayment, error) {
	var rows []*ProductPayment
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("client_id = ?", clientId).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ResolveEntities(ctx, rows)
	return rows, nil
}
