package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
	"github.com/qs3c/fitness_go_server/internal/testutil"
)

func TestRunMigrate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	var out bytes.Buffer
	require.NoError(t, runMigrate(&out, db))
	assert.Contains(t, out.String(), "migrated 13 tables")
}

func TestRunExpire(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	now := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	plan := testutil.TestPlan(t, db)
	expired := testutil.TestUser(t, db)
	current := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, expired.ID, plan,
		testutil.WithPeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	testutil.TestSubscription(t, db, current.ID, plan,
		testutil.WithPeriod(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))

	var out bytes.Buffer
	require.NoError(t, runExpire(context.Background(), &out, db, &config.Config{}, now))
	assert.Equal(t, "expired 1 subscriptions\n", out.String())

	var active int64
	db.Model(&model.UserSubscription{}).Where("is_active = ?", true).Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestRunFailuresList(t *testing.T) {
	_, rdb := testutil.SetupTestRedis(t)
	ctx := context.Background()
	q := queue.NewQueue(rdb, "fulfillment:failures")

	var out bytes.Buffer
	require.NoError(t, runFailuresList(ctx, &out, rdb, "fulfillment:failures", 10))
	assert.Equal(t, "0 queued failures\n", out.String())

	require.NoError(t, q.Push(ctx, &queue.FailureMessage{
		EventID:    "evt_1",
		PaymentRef: "pi_1",
		Kind:       "subscription",
		UserID:     3,
		Reason:     "plan 9 not found",
		OccurredAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}))

	out.Reset()
	require.NoError(t, runFailuresList(ctx, &out, rdb, "fulfillment:failures", 10))
	assert.Contains(t, out.String(), "1 queued failures")
	assert.Contains(t, out.String(), "evt_1")
	assert.Contains(t, out.String(), "plan 9 not found")

	// 查看不出队
	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
