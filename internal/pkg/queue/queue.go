package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// FailureMessage 履约失败记录，由 worker 消费并告警
type FailureMessage struct {
	Provider   string    `json:"provider"`
	EventID    string    `json:"event_id"`
	PaymentRef string    `json:"payment_ref"`
	Kind       string    `json:"kind"`
	UserID     int64     `json:"user_id,omitempty"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将失败记录加入队列
func (q *Queue) Push(ctx context.Context, msg *FailureMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取记录（阻塞），超时返回 nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*FailureMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg FailureMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Peek 查看最近的 n 条记录，不出队
func (q *Queue) Peek(ctx context.Context, n int64) ([]*FailureMessage, error) {
	raw, err := q.client.LRange(ctx, q.queueName, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*FailureMessage, 0, len(raw))
	for _, r := range raw {
		var msg FailureMessage
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			continue
		}
		out = append(out, &msg)
	}
	return out, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
