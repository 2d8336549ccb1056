package repository

import (
	"time"

	"github.com/mrgoonie/docobo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Seen reports whether an event with the given external id was already
// recorded.
func (r *webhookEventRepository) Seen(externalEventID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).
		Where("external_event_id = ?", externalEventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the ledger row. A concurrent delivery racing on the
// same external id hits the unique index; OnConflict DoNothing turns
// that into RowsAffected == 0, reported as ErrDuplicateEvent.
func (r *webhookEventRepository) Create(event *models.WebhookEvent) error {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

// Complete marks the event processed. A non-empty errorMessage leaves
// processed=false so operators can find the row for reconciliation.
func (r *webhookEventRepository) Complete(externalEventID string, errorMessage string) error {
	updates := map[string]interface{}{
		"error_message": errorMessage,
	}
	if errorMessage == "" {
		now := time.Now()
		updates["processed"] = true
		updates["processed_at"] = &now
	} else {
		updates["processed"] = false
	}
	return r.db.Model(&models.WebhookEvent{}).
		Where("external_event_id = ?", externalEventID).
		Updates(updates).Error
}

// AttachSubscription back-references the subscription an event produced.
func (r *webhookEventRepository) AttachSubscription(externalEventID string, subscriptionID uint) error {
	return r.db.Model(&models.WebhookEvent{}).
		Where("external_event_id = ?", externalEventID).
		Update("subscription_id", subscriptionID).Error
}

// ListFailed returns the operator-facing backlog of events that finished
// with an error.
func (r *webhookEventRepository) ListFailed(limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.WebhookEvent
	err := r.db.Where("processed = ? AND error_message <> ''", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
