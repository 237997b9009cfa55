package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/pkg/email"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

const fulfillmentLockPrefix = "lock:fulfillment:"

var ErrInvalidSignature = errors.New("签名校验失败")

// Mailer 履约邮件
type Mailer interface {
	SendOrderReceipt(ctx context.Context, to, username string, r *email.OrderReceipt) error
	SendSubscriptionConfirmation(ctx context.Context, to, username, planName string, endDate time.Time) error
}

// FailureQueue 履约失败队列
type FailureQueue interface {
	Push(ctx context.Context, msg *queue.FailureMessage) error
}

// FulfillmentResult 一次回调的处理结果
type FulfillmentResult struct {
	Status         string `json:"status"` // fulfilled, duplicate, rejected, ignored
	Reason         string `json:"reason,omitempty"`
	EventID        string `json:"event_id"`
	PaymentRef     string `json:"payment_ref,omitempty"`
	OrderID        int64  `json:"order_id,omitempty"`
	SubscriptionID int64  `json:"subscription_id,omitempty"`
}

func fulfilled() *FulfillmentResult {
	return &FulfillmentResult{Status: model.WebhookStatusFulfilled}
}

func duplicate() *FulfillmentResult {
	return &FulfillmentResult{Status: model.WebhookStatusDuplicate}
}

func rejected(format string, args ...interface{}) *FulfillmentResult {
	return &FulfillmentResult{Status: model.WebhookStatusRejected, Reason: fmt.Sprintf(format, args...)}
}

func ignored(reason string) *FulfillmentResult {
	return &FulfillmentResult{Status: model.WebhookStatusIgnored, Reason: reason}
}

// FulfillmentService 支付回调对账：验签后为每个支付流水恰好创建一次订单或订阅
type FulfillmentService struct {
	db          *gorm.DB
	gateway     payment.Gateway
	locker      *redsync.Redsync
	eventRepo   *repository.WebhookEventRepository
	userRepo    *repository.UserRepository
	productRepo *repository.ProductRepository
	orderRepo   *repository.OrderRepository
	subRepo     *repository.SubscriptionRepository
	store       cart.Store
	notifier    Notifier
	mailer      Mailer
	failures    FailureQueue
	cfg         *config.Config
	now         func() time.Time
	dispatch    func(func())
}

func NewFulfillmentService(
	db *gorm.DB,
	gateway payment.Gateway,
	locker *redsync.Redsync,
	store cart.Store,
	notifier Notifier,
	mailer Mailer,
	failures FailureQueue,
	cfg *config.Config,
) *FulfillmentService {
	return &FulfillmentService{
		db:          db,
		gateway:     gateway,
		locker:      locker,
		eventRepo:   repository.NewWebhookEventRepository(db),
		userRepo:    repository.NewUserRepository(db),
		productRepo: repository.NewProductRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		subRepo:     repository.NewSubscriptionRepository(db),
		store:       store,
		notifier:    notifier,
		mailer:      mailer,
		failures:    failures,
		cfg:         cfg,
		now:         time.Now,
		dispatch:    func(f func()) { go f() },
	}
}

// HandleWebhook 校验签名并处理事件；签名错误返回 ErrInvalidSignature 且不做任何修改
func (s *FulfillmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*FulfillmentResult, error) {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			logger.Warn("webhook signature rejected", "provider", s.gateway.Name(), "error", err)
			return nil, ErrInvalidSignature
		}
		return nil, err
	}
	return s.Reconcile(ctx, event)
}

// Reconcile 处理已验签的事件
func (s *FulfillmentService) Reconcile(ctx context.Context, event *payment.Event) (*FulfillmentResult, error) {
	record, state, err := s.recordEvent(event)
	if err != nil {
		return nil, err
	}
	if state == eventReplayed {
		logger.Info("webhook event replayed", "event_id", event.ID, "previous_status", record.Status)
		return s.withRefs(duplicate(), event), nil
	}

	if event.PaymentIntentID != "" {
		opts := []redsync.Option{}
		if s.cfg.Payment.LockExpiry > 0 {
			opts = append(opts, redsync.WithExpiry(s.cfg.Payment.LockExpiry))
		}
		mutex := s.locker.NewMutex(fulfillmentLockPrefix+event.PaymentIntentID, opts...)
		if err := mutex.LockContext(ctx); err != nil {
			return nil, fmt.Errorf("acquire fulfillment lock: %w", err)
		}
		defer func() {
			if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release fulfillment lock failed", "payment_ref", event.PaymentIntentID, "error", err)
			}
		}()
	}

	res, err := s.process(ctx, event)
	if err != nil {
		logger.Error("fulfillment failed", "event_id", event.ID, "payment_ref", event.PaymentIntentID, "error", err)
		return nil, err
	}
	s.withRefs(res, event)

	status, reason := res.Status, res.Reason
	if state == eventPending && res.Status == model.WebhookStatusDuplicate {
		// 同一事件的另一次投递已经履约，记录以履约结果为准
		status, reason = model.WebhookStatusFulfilled, "fulfilled by an earlier delivery"
	}
	if err := s.eventRepo.MarkProcessed(record.ID, status, reason, s.now()); err != nil {
		logger.Warn("mark webhook event failed", "event_id", event.ID, "error", err)
	}
	s.report(ctx, event, res)
	return res, nil
}

// 事件记录状态
const (
	eventCreated  = iota // 本次投递新建
	eventPending         // 已存在但尚未处理完成
	eventReplayed        // 已处理过
)

// recordEvent 落库事件并返回本次投递对应的记录状态
func (s *FulfillmentService) recordEvent(event *payment.Event) (*model.WebhookEvent, int, error) {
	record := &model.WebhookEvent{
		Provider:   s.gateway.Name(),
		EventID:    event.ID,
		EventType:  event.Type,
		PaymentRef: event.PaymentIntentID,
		Status:     model.WebhookStatusReceived,
	}
	if len(event.Payload) > 0 {
		record.Payload = datatypes.JSON(event.Payload)
	}

	err := s.eventRepo.Create(record)
	if err == nil {
		return record, eventCreated, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, 0, fmt.Errorf("record webhook event: %w", err)
	}

	existing, err := s.eventRepo.GetByEventID(record.Provider, event.ID)
	if err != nil {
		return nil, 0, err
	}
	if existing.Status != model.WebhookStatusReceived {
		return existing, eventReplayed, nil
	}
	// 上次处理中途失败或仍在处理的事件允许重试
	return existing, eventPending, nil
}

func (s *FulfillmentService) process(ctx context.Context, event *payment.Event) (*FulfillmentResult, error) {
	if event.Type != payment.EventCheckoutCompleted {
		return ignored("unhandled event type " + event.Type), nil
	}
	if event.PaymentStatus != "" && event.PaymentStatus != "paid" && event.PaymentStatus != "no_payment_required" {
		return ignored("payment status " + event.PaymentStatus), nil
	}
	if event.PaymentIntentID == "" {
		return rejected("missing payment intent"), nil
	}

	switch kind := event.Metadata[payment.MetaKind]; kind {
	case payment.KindOrder:
		return s.fulfillOrder(ctx, event)
	case payment.KindSubscription:
		return s.fulfillSubscription(ctx, event)
	default:
		return rejected("unknown checkout kind %q", kind), nil
	}
}

func (s *FulfillmentService) fulfillOrder(ctx context.Context, event *payment.Event) (*FulfillmentResult, error) {
	md, err := payment.DecodeOrderMetadata(event.Metadata)
	if err != nil {
		return rejected("%v", err), nil
	}

	exists, err := s.orderRepo.ExistsByPaymentRef(event.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return duplicate(), nil
	}

	user, err := s.userRepo.GetByID(md.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("user %d not found", md.UserID), nil
		}
		return nil, err
	}

	lines := md.Cart.Lines()
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &model.Order{
		UserID:     user.ID,
		Total:      md.Cart.Total(),
		IsPaid:     true,
		PaymentRef: event.PaymentIntentID,
		Items:      make([]*model.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		if _, ok := byID[l.ProductID]; !ok {
			return rejected("product %d not found", l.ProductID), nil
		}
		// 使用结账时的价格
		order.Items = append(order.Items, &model.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewOrderRepository(tx).Create(order)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return duplicate(), nil
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.store.Delete(ctx, user.ID); err != nil {
		logger.Warn("clear cart after fulfillment failed", "user_id", user.ID, "error", err)
	}

	notify(ctx, s.notifier, &pubsub.Notification{
		Type:   pubsub.TypeOrderPaid,
		UserID: user.ID,
		Data:   map[string]interface{}{"order_id": order.ID, "total": money(order.Total)},
	})
	s.sendReceipt(ctx, user, order, byID)

	res := fulfilled()
	res.OrderID = order.ID
	return res, nil
}

func (s *FulfillmentService) fulfillSubscription(ctx context.Context, event *payment.Event) (*FulfillmentResult, error) {
	md, err := payment.DecodeSubscriptionMetadata(event.Metadata)
	if err != nil {
		return rejected("%v", err), nil
	}

	exists, err := s.subRepo.ExistsByPaymentRef(event.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return duplicate(), nil
	}

	user, err := s.userRepo.GetByID(md.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("user %d not found", md.UserID), nil
		}
		return nil, err
	}

	plan, err := s.subRepo.GetPlanByID(md.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejected("plan %d not found", md.PlanID), nil
		}
		return nil, err
	}
	if !plan.Price.Equal(md.PlanPrice) {
		logger.Warn("plan price changed since checkout", "plan_id", plan.ID, "paid", money(md.PlanPrice), "current", money(plan.Price))
	}

	active, err := s.subRepo.HasActive(user.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return rejected("active subscription exists"), nil
	}

	sub := &model.UserSubscription{
		UserID:     user.ID,
		PlanID:     plan.ID,
		Plan:       plan,
		StartDate:  s.now(),
		IsActive:   true,
		PaymentRef: event.PaymentIntentID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewSubscriptionRepository(tx).Create(sub)
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		// 区分重复回调与并发产生的另一个生效订阅
		dup, lookupErr := s.subRepo.ExistsByPaymentRef(event.PaymentIntentID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if dup {
			return duplicate(), nil
		}
		return rejected("active subscription exists"), nil
	}

	notify(ctx, s.notifier, &pubsub.Notification{
		Type:   pubsub.TypeSubscriptionActivated,
		UserID: user.ID,
		Data: map[string]interface{}{
			"subscription_id": sub.ID,
			"plan":            plan.Name,
			"end_date":        sub.EndDate.Format(time.RFC3339),
		},
	})
	if s.mailer != nil && user.Email != nil {
		to, name, planName, end := *user.Email, user.Username, plan.Name, sub.EndDate
		s.dispatch(func() {
			if err := s.mailer.SendSubscriptionConfirmation(context.WithoutCancel(ctx), to, name, planName, end); err != nil {
				logger.Warn("send subscription confirmation failed", "user_id", user.ID, "error", err)
			}
		})
	}

	res := fulfilled()
	res.SubscriptionID = sub.ID
	return res, nil
}

func (s *FulfillmentService) sendReceipt(ctx context.Context, user *model.User, order *model.Order, products map[int64]*model.Product) {
	if s.mailer == nil || user.Email == nil {
		return
	}

	receipt := &email.OrderReceipt{OrderID: order.ID, Total: money(order.Total)}
	for _, item := range order.Items {
		receipt.Lines = append(receipt.Lines, email.ReceiptLine{
			Name:     products[item.ProductID].Name,
			Quantity: item.Quantity,
			Price:    money(item.Price),
		})
	}

	to, name := *user.Email, user.Username
	s.dispatch(func() {
		if err := s.mailer.SendOrderReceipt(context.WithoutCancel(ctx), to, name, receipt); err != nil {
			logger.Warn("send order receipt failed", "order_id", order.ID, "error", err)
		}
	})
}

func (s *FulfillmentService) withRefs(res *FulfillmentResult, event *payment.Event) *FulfillmentResult {
	res.EventID = event.ID
	res.PaymentRef = event.PaymentIntentID
	return res
}

// report 记录结果，拒绝的事件进入失败队列等待人工处理
func (s *FulfillmentService) report(ctx context.Context, event *payment.Event, res *FulfillmentResult) {
	log := logger.With("event_id", event.ID, "payment_ref", event.PaymentIntentID, "result", res.Status)
	if res.Status != model.WebhookStatusRejected {
		log.Info("webhook event processed", "order_id", res.OrderID, "subscription_id", res.SubscriptionID)
		return
	}

	log.Error("fulfillment rejected", "reason", res.Reason)
	if s.failures == nil {
		return
	}

	msg := &queue.FailureMessage{
		Provider:   s.gateway.Name(),
		EventID:    event.ID,
		PaymentRef: event.PaymentIntentID,
		Kind:       event.Metadata[payment.MetaKind],
		Reason:     res.Reason,
		OccurredAt: s.now(),
	}
	if uid, err := strconv.ParseInt(event.Metadata[payment.MetaUserID], 10, 64); err == nil {
		msg.UserID = uid
	}
	if err := s.failures.Push(context.WithoutCancel(ctx), msg); err != nil {
		log.Error("push fulfillment failure failed", "error", err)
	}
}
