package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gopkg.in/gomail.v2"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	cfg         *config.EmailConfig
	dialer      sender
	newBackOff  func() backoff.BackOff
	maxAttempts uint
}

func NewService(cfg *config.EmailConfig) *Service {
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}
	return &Service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			return b
		},
		maxAttempts: attempts,
	}
}

// ReceiptLine 收据明细
type ReceiptLine struct {
	Name     string
	Quantity int
	Price    string
}

// OrderReceipt 订单收据
type OrderReceipt struct {
	OrderID int64
	Total   string
	Lines   []ReceiptLine
}

// FulfillmentAlert 履约失败告警
type FulfillmentAlert struct {
	EventID    string
	PaymentRef string
	Kind       string
	Reason     string
	OccurredAt time.Time
}

// SendOrderReceipt 发送订单收据
func (s *Service) SendOrderReceipt(ctx context.Context, to, username string, r *OrderReceipt) error {
	var rows strings.Builder
	for _, l := range r.Lines {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>", l.Name, l.Quantity, l.Price)
	}

	subject := fmt.Sprintf("Your order #%d", r.OrderID)
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Thanks for your order, %s!</h2>
    <p>Order #%d has been paid.</p>
    <table cellpadding="6">
        <tr><th>Product</th><th>Qty</th><th>Price</th></tr>
        %s
    </table>
    <p><strong>Total: %s</strong></p>
</body>
</html>
`, username, r.OrderID, rows.String(), r.Total)

	return s.send(ctx, []string{to}, subject, body)
}

// SendSubscriptionConfirmation 发送订阅开通邮件
func (s *Service) SendSubscriptionConfirmation(ctx context.Context, to, username, planName string, endDate time.Time) error {
	subject := fmt.Sprintf("Your %s subscription is active", planName)
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Welcome aboard, %s!</h2>
    <p>Your <strong>%s</strong> subscription is active until %s.</p>
</body>
</html>
`, username, planName, endDate.Format("2006-01-02"))

	return s.send(ctx, []string{to}, subject, body)
}

// SendFulfillmentAlert 通知运营人员履约失败
func (s *Service) SendFulfillmentAlert(ctx context.Context, a *FulfillmentAlert) error {
	if len(s.cfg.OperatorTo) == 0 {
		return nil
	}
	subject := fmt.Sprintf("[fulfillment] %s rejected: %s", a.Kind, a.PaymentRef)
	body := fmt.Sprintf(`
<html>
<body style="font-family: monospace;">
    <p>A paid checkout could not be fulfilled and needs manual review.</p>
    <ul>
        <li>event: %s</li>
        <li>payment: %s</li>
        <li>kind: %s</li>
        <li>reason: %s</li>
        <li>at: %s</li>
    </ul>
</body>
</html>
`, a.EventID, a.PaymentRef, a.Kind, a.Reason, a.OccurredAt.Format(time.RFC3339))

	return s.send(ctx, s.cfg.OperatorTo, subject, body)
}

// send 发送 HTML 邮件，失败按指数退避重试
func (s *Service) send(ctx context.Context, to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := s.dialer.DialAndSend(m); err != nil {
			logger.Warn("send email failed", "subject", subject, "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(s.maxAttempts))
	if err != nil {
		return fmt.Errorf("failed to send email %q: %w", subject, err)
	}
	return nil
}
