package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotifications = "notifications"
)

// 通知类型
const (
	TypeOrderPaid             = "order_paid"
	TypeSubscriptionActivated = "subscription_activated"
	TypePostCommented         = "post_commented"
	TypePostLiked             = "post_liked"
)

// Notification 推送给用户的通知，跨进程经 Redis 转发到 WebSocket
type Notification struct {
	Type   string                 `json:"type"`
	UserID int64                  `json:"user_id"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布通知
func (p *Publisher) Publish(ctx context.Context, n *Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return p.client.Publish(ctx, ChannelNotifications, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅通知，直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Notification)) error {
	ps := s.client.Subscribe(ctx, ChannelNotifications)
	defer ps.Close()

	// 等待订阅确认，避免丢失紧随其后的消息
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				continue // 忽略解析错误
			}

			handler(&n)
		}
	}
}
