package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/qs3c/fitness_go_server/internal/pkg/email"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
)

// 队列为空时单次阻塞等待时间
const popTimeout = 5 * time.Second

// Source 履约失败队列
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.FailureMessage, error)
}

// Alerter 运营告警
type Alerter interface {
	SendFulfillmentAlert(ctx context.Context, a *email.FulfillmentAlert) error
}

// Processor 消费履约失败记录并通知运营人员
type Processor struct {
	source  Source
	alerter Alerter
}

// NewProcessor alerter 为 nil 时只记录日志
func NewProcessor(source Source, alerter Alerter) *Processor {
	return &Processor{
		source:  source,
		alerter: alerter,
	}
}

// Process 处理一条失败记录
func (p *Processor) Process(ctx context.Context, msg *queue.FailureMessage) error {
	logger.Warn("fulfillment needs manual review",
		"provider", msg.Provider,
		"event_id", msg.EventID,
		"payment_ref", msg.PaymentRef,
		"kind", msg.Kind,
		"user_id", msg.UserID,
		"reason", msg.Reason,
	)
	if p.alerter == nil {
		return nil
	}

	err := p.alerter.SendFulfillmentAlert(ctx, &email.FulfillmentAlert{
		EventID:    msg.EventID,
		PaymentRef: msg.PaymentRef,
		Kind:       msg.Kind,
		Reason:     msg.Reason,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("send alert for event %s: %w", msg.EventID, err)
	}
	return nil
}

// Run 循环消费队列直到 ctx 取消
func (p *Processor) Run(ctx context.Context, workerID int) {
	log := logger.With("worker_id", workerID)
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		default:
		}

		msg, err := p.source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("pop failure message failed", "error", err)
			// 避免 Redis 不可用时空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, msg); err != nil {
			log.Error("process failure message failed", "event_id", msg.EventID, "error", err)
		}
	}
}
