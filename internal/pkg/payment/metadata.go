package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
)

// Stripe metadata 单个值最长 500 字符，最多 50 个键
const (
	maxMetadataValue = 500
	maxCartChunks    = 40
)

const (
	KindOrder        = "order"
	KindSubscription = "subscription"
)

const (
	MetaKind       = "kind"
	MetaUserID     = "user_id"
	MetaPlanID     = "plan_id"
	MetaPlanPrice  = "plan_price"
	MetaCartChunks = "cart_chunks"
	metaCartPrefix = "cart_"
)

var (
	ErrMalformedMetadata = errors.New("payment: malformed metadata")
	ErrCartTooLarge      = errors.New("payment: cart too large for metadata")
)

var validate = validator.New()

// OrderMetadata 商品订单的结账元数据
type OrderMetadata struct {
	UserID int64
	Cart   *cart.Cart
}

// SubscriptionMetadata 订阅的结账元数据
type SubscriptionMetadata struct {
	UserID    int64
	PlanID    int64
	PlanPrice decimal.Decimal
}

type rawOrderMetadata struct {
	Kind   string `validate:"required,eq=order"`
	UserID string `validate:"required,number"`
	Chunks string `validate:"required,number"`
}

type rawSubscriptionMetadata struct {
	Kind      string `validate:"required,eq=subscription"`
	UserID    string `validate:"required,number"`
	PlanID    string `validate:"required,number"`
	PlanPrice string `validate:"required,numeric"`
}

// EncodeOrderMetadata 序列化购物车，超过单值上限时拆分为 cart_0..cart_n
func EncodeOrderMetadata(userID int64, c *cart.Cart) (map[string]string, error) {
	data, err := c.Encode()
	if err != nil {
		return nil, err
	}
	s := string(data)

	md := map[string]string{
		MetaKind:   KindOrder,
		MetaUserID: strconv.FormatInt(userID, 10),
	}
	n := 0
	for len(s) > 0 {
		if n >= maxCartChunks {
			return nil, ErrCartTooLarge
		}
		end := maxMetadataValue
		if end > len(s) {
			end = len(s)
		}
		md[metaCartPrefix+strconv.Itoa(n)] = s[:end]
		s = s[end:]
		n++
	}
	md[MetaCartChunks] = strconv.Itoa(n)
	return md, nil
}

// EncodeSubscriptionMetadata 订阅元数据，带下单时的计划价格
func EncodeSubscriptionMetadata(userID, planID int64, price decimal.Decimal) map[string]string {
	return map[string]string{
		MetaKind:      KindSubscription,
		MetaUserID:    strconv.FormatInt(userID, 10),
		MetaPlanID:    strconv.FormatInt(planID, 10),
		MetaPlanPrice: price.StringFixed(2),
	}
}

// DecodeOrderMetadata 解析商品订单元数据
func DecodeOrderMetadata(md map[string]string) (*OrderMetadata, error) {
	raw := rawOrderMetadata{Kind: md[MetaKind], UserID: md[MetaUserID], Chunks: md[MetaCartChunks]}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	userID, err := parseID(raw.UserID)
	if err != nil {
		return nil, err
	}
	chunks, err := strconv.Atoi(raw.Chunks)
	if err != nil || chunks <= 0 || chunks > maxCartChunks {
		return nil, fmt.Errorf("%w: cart_chunks=%q", ErrMalformedMetadata, raw.Chunks)
	}

	var b strings.Builder
	for i := 0; i < chunks; i++ {
		part, ok := md[metaCartPrefix+strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("%w: missing cart chunk %d", ErrMalformedMetadata, i)
		}
		b.WriteString(part)
	}

	c, err := cart.Decode([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if c.IsEmpty() {
		return nil, fmt.Errorf("%w: empty cart", ErrMalformedMetadata)
	}
	return &OrderMetadata{UserID: userID, Cart: c}, nil
}

// DecodeSubscriptionMetadata 解析订阅元数据
func DecodeSubscriptionMetadata(md map[string]string) (*SubscriptionMetadata, error) {
	raw := rawSubscriptionMetadata{
		Kind:      md[MetaKind],
		UserID:    md[MetaUserID],
		PlanID:    md[MetaPlanID],
		PlanPrice: md[MetaPlanPrice],
	}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	userID, err := parseID(raw.UserID)
	if err != nil {
		return nil, err
	}
	planID, err := parseID(raw.PlanID)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(raw.PlanPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: plan_price=%q", ErrMalformedMetadata, raw.PlanPrice)
	}
	return &SubscriptionMetadata{UserID: userID, PlanID: planID, PlanPrice: price}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id=%q", ErrMalformedMetadata, s)
	}
	return id, nil
}

// MinorUnits 金额转换为最小货币单位（分）
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
