package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create 记录收到的事件，同一事件重复投递返回 gorm.ErrDuplicatedKey
func (r *WebhookEventRepository) Create(event *model.WebhookEvent) error {
	return r.db.Create(event).Error
}

// GetByEventID 根据服务商事件 ID 获取记录
func (r *WebhookEventRepository) GetByEventID(provider, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent
	err := r.db.Where("provider = ? AND event_id = ?", provider, eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// MarkProcessed 写入处理结果，只更新尚未处理的记录
func (r *WebhookEventRepository) MarkProcessed(id int64, status, reason string, at time.Time) error {
	return r.db.Model(&model.WebhookEvent{}).
		Where("id = ? AND status = ?", id, model.WebhookStatusReceived).
		Updates(map[string]interface{}{
			"status":       status,
			"reason":       reason,
			"processed_at": at,
		}).Error
}

// ListByStatus 按状态查询，最新在前
func (r *WebhookEventRepository) ListByStatus(status string, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent
	err := r.db.Where("status = ?", status).Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}
