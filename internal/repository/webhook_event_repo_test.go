package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestWebhookEventRepository_CreateAndDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewWebhookEventRepository(db)
	event := &model.WebhookEvent{
		Provider:  "stripe",
		EventID:   "evt_1",
		EventType: "checkout.session.completed",
		Payload:   datatypes.JSON(`{"id":"evt_1"}`),
		Status:    model.WebhookStatusReceived,
	}
	require.NoError(t, repo.Create(event))

	err := repo.Create(&model.WebhookEvent{Provider: "stripe", EventID: "evt_1", EventType: "x", Status: model.WebhookStatusReceived})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// 不同服务商的相同事件 ID 不冲突
	require.NoError(t, repo.Create(&model.WebhookEvent{Provider: "other", EventID: "evt_1", EventType: "x", Status: model.WebhookStatusReceived}))
}

func TestWebhookEventRepository_MarkProcessed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewWebhookEventRepository(db)
	event := &model.WebhookEvent{Provider: "stripe", EventID: "evt_2", EventType: "checkout.session.completed", Status: model.WebhookStatusReceived}
	require.NoError(t, repo.Create(event))

	require.NoError(t, repo.MarkProcessed(event.ID, model.WebhookStatusRejected, "user not found", time.Now()))

	found, err := repo.GetByEventID("stripe", "evt_2")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusRejected, found.Status)
	assert.Equal(t, "user not found", found.Reason)
	assert.NotNil(t, found.ProcessedAt)

	// 已处理的记录不会被覆盖
	require.NoError(t, repo.MarkProcessed(event.ID, model.WebhookStatusDuplicate, "", time.Now()))
	found, err = repo.GetByEventID("stripe", "evt_2")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusRejected, found.Status)

	rejected, err := repo.ListByStatus(model.WebhookStatusRejected, 10)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}
