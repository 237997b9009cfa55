package cron

import (
	"context"
	"fmt"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
)

// Expirer 将到期订阅置为失效
type Expirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	cron    *robfig.Cron
	expirer Expirer
	timeout time.Duration
	now     func() time.Time
}

func NewService(expirer Expirer) *Service {
	return &Service{
		cron:    robfig.New(robfig.WithSeconds()),
		expirer: expirer,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// ScheduleExpiry 按 cron 表达式注册订阅过期任务
func (s *Service) ScheduleExpiry(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunExpiry() }); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// RunExpiry 执行一次过期扫描
func (s *Service) RunExpiry() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.expirer.ExpireDue(ctx, s.now())
	if err != nil {
		logger.Error("expire subscriptions failed", "error", err)
		return 0
	}
	if n > 0 {
		logger.Info("expired subscriptions", "count", n)
	}
	return n
}

// Start 启动定时任务
func (s *Service) Start() {
	s.cron.Start()
	logger.Info("cron service started", "entries", len(s.cron.Entries()))
}

// Stop 停止定时任务并等待正在执行的任务结束
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("cron service stopped")
}
