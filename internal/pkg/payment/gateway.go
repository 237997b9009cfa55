package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrProvider         = errors.New("payment: provider error")
)

// LineItem 结账行
type LineItem struct {
	Name       string
	UnitAmount decimal.Decimal
	Quantity   int64
}

// CheckoutRequest 创建托管结账会话的请求
type CheckoutRequest struct {
	Currency      string
	LineItems     []LineItem
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
}

// CheckoutSession 托管结账会话
type CheckoutSession struct {
	ID  string
	URL string
}

// Event 验签后的 webhook 事件
type Event struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
	Payload         []byte
}

// Gateway 支付服务商
type Gateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook 校验签名并解析事件，签名不合法返回 ErrInvalidSignature
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}
