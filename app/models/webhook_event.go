package models

import "time"

// WebhookEvent stores every accepted provider webhook delivery with
// deduplication metadata for idempotent processing. The unique index on
// external_event_id is the sole concurrency-control primitive: a second
// insert with the same id is detected before any side effect runs.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ExternalEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_external_event" json:"external_event_id"`
	Provider        string     `gorm:"type:varchar(20);not null;index" json:"provider"`
	EventType       string     `gorm:"type:varchar(50);not null;index" json:"event_type"`
	RawPayload      string     `gorm:"type:longtext;not null" json:"raw_payload"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	SubscriptionID  *uint      `gorm:"default:null;index" json:"subscription_id,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
