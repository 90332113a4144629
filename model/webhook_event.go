package model

import (
	"time"

	"gorm.io/datatypes"
)

// Webhook event outcomes recorded for operator follow-up.
const (
	WebhookEventProcessed = "processed" // transition applied
	WebhookEventSkipped   = "skipped"   // replay / unhandled type / no-op
	WebhookEventOrphaned  = "orphaned"  // referenced purchase does not exist
)

// WebhookEvent is an audit row for every notification the reconciler saw.
// Orphaned rows flag ledger/gateway divergence: the gateway referenced a
// purchase the ledger has no record of. Those need manual reconciliation.
type WebhookEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Provider   string         `gorm:"type:varchar(20);not null;index" json:"provider"` // stripe, clerk
	EventID    string         `gorm:"type:varchar(100);index" json:"event_id"`
	EventType  string         `gorm:"type:varchar(100);not null" json:"event_type"`
	PurchaseID string         `gorm:"type:varchar(36);index" json:"purchase_id,omitempty"`
	Status     string         `gorm:"type:varchar(20);not null;index" json:"status"`
	Detail     string         `gorm:"type:text" json:"detail,omitempty"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName specifies the table name for WebhookEvent
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
