package models

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/edulinkhq/crm_backend/config"
	"gorm.io/gorm"
)

// NotificationRecord is a transactional-outbox row: it is written inside the
// caller's DB transaction and published to redis pub/sub by the dispatcher
// after commit, so subscribers never observe an uncommitted write.
type NotificationRecord struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Channel   string    `gorm:"size:100;index;not null" json:"channel"`
	Payload   []byte    `gorm:"type:json" json:"payload"`
	Published bool      `gorm:"index;default:false" json:"published"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type clientEventPayload struct {
	Event        string `json:"event"`
	ClientId     int    `json:"client_id"`
	CounsellorId int    `json:"counsellor_id"`
	ReferenceId  int    `json:"reference_id"`
}

// queueClientNotification writes outbox rows for the owning counsellor's
// channel and the admin channel. Subscribers re-fetch the client's resolved
// record and their visible client list on receipt; the payload carries ids
// only.
func queueClientNotification(ctx context.Context, tx *gorm.DB, event string, clientId int, counsellorId int, referenceId int) error {
	payload, err := json.Marshal(clientEventPayload{
		Event:        event,
		ClientId:     clientId,
		CounsellorId: counsellorId,
		ReferenceId:  referenceId,
	})
	if err != nil {
		return err
	}

	records := []NotificationRecord{
		{Channel: CounsellorChannel(counsellorId), Payload: payload},
		{Channel: AdminChannel, Payload: payload},
	}
	return tx.WithContext(ctx).Create(&records).Error
}

const AdminChannel = "notify:admin"

func CounsellorChannel(counsellorId int) string {
	return "notify:counsellor:" + strconv.Itoa(counsellorId)
}

// DispatchPendingNotifications publishes unpublished outbox rows and marks
// them published. Safe to call from a polling loop; a row that fails to
// publish stays pending and is retried on the next pass.
func DispatchPendingNotifications(ctx context.Context, batchSize int) (int, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	var records []NotificationRecord
	err := db.WithContext(ctx).
		Where("published = ?", false).
		Order("id").
		Limit(batchSize).
		Find(&records).Error
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, record := range records {
		if err := config.PublishRedisMessage(ctx, record.Channel, record.Payload); err != nil {
			config.LogError(logger, "models", "DispatchPendingNotifications", "publish failed", record.ID, err)
			continue
		}
		if err := db.WithContext(ctx).Model(&NotificationRecord{}).
			Where("id = ?", record.ID).
			Update("published", true).Error; err != nil {
			return dispatched, err
		}
		dispatched++
	}
	return dispatched, nil
}

// RunNotificationDispatcher polls the outbox until the context is cancelled.
func RunNotificationDispatcher(ctx context.Context, interval time.Duration) {
	logger := config.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := DispatchPendingNotifications(ctx, 100); err != nil {
				config.LogError(logger, "models", "RunNotificationDispatcher", "dispatch pass failed", nil, err)
			}
		}
	}
}
