package model

import (
	"time"

	"gorm.io/datatypes"
)

// Webhook 事件处理结果
const (
	WebhookStatusReceived  = "received"
	WebhookStatusFulfilled = "fulfilled"
	WebhookStatusDuplicate = "duplicate"
	WebhookStatusRejected  = "rejected"
	WebhookStatusIgnored   = "ignored"
)

// WebhookEvent 支付回调事件记录
type WebhookEvent struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	Provider    string         `gorm:"size:32;not null;uniqueIndex:idx_webhook_provider_event" json:"provider"`
	EventID     string         `gorm:"size:255;not null;uniqueIndex:idx_webhook_provider_event" json:"event_id"`
	EventType   string         `gorm:"size:100;not null;index" json:"event_type"`
	PaymentRef  string         `gorm:"size:255;index" json:"payment_ref,omitempty"`
	Payload     datatypes.JSON `json:"payload"`
	Status      string         `gorm:"size:20;not null;default:received;index" json:"status"`
	Reason      string         `gorm:"type:text" json:"reason,omitempty"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
