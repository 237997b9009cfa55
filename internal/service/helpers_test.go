package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/pkg/email"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:3000/"},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		Payment: config.PaymentConfig{
			Currency:    "usd",
			SuccessPath: "/store/orders/success",
			CancelPath:  "/store/orders/cancel",
			LockExpiry:  5 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxSize:      1024,
			AllowedTypes: []string{"image/png", "image/jpeg"},
		},
	}
}

// fakeGateway 记录结账请求，可注入 webhook 事件
type fakeGateway struct {
	mu       sync.Mutex
	requests []*payment.CheckoutRequest
	err      error
	event    *payment.Event
	parseErr error
}

func (g *fakeGateway) Name() string { return "stripe" }

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*pubsub.Notification
	err  error
}

func (n *fakeNotifier) Publish(ctx context.Context, msg *pubsub.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Type)
	}
	return out
}

type fakeMailer struct {
	mu            sync.Mutex
	receipts      []*email.OrderReceipt
	confirmations []string
}

func (m *fakeMailer) SendOrderReceipt(ctx context.Context, to, username string, r *email.OrderReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, r)
	return nil
}

func (m *fakeMailer) SendSubscriptionConfirmation(ctx context.Context, to, username, planName string, endDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, planName)
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	messages []*queue.FailureMessage
}

func (q *fakeQueue) Push(ctx context.Context, msg *queue.FailureMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return nil
}

type fakeStorage struct {
	url string
	err error
}

func (s *fakeStorage) UploadImage(folder string, ownerID int64, data []byte, allowed []string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

var errProviderDown = errors.New("connection refused")
