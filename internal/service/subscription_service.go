package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var (
	ErrPlanNotFound             = errors.New("订阅计划不存在")
	ErrActiveSubscriptionExists = errors.New("已有生效中的订阅")
)

type SubscriptionService struct {
	subRepo  *repository.SubscriptionRepository
	userRepo *repository.UserRepository
	gateway  payment.Gateway
	cfg      *config.Config
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	gateway payment.Gateway,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		gateway:  gateway,
		cfg:      cfg,
	}
}

// ListPlans 可订阅计划，登录用户附带当前订阅
func (s *SubscriptionService) ListPlans(userID *int64) (*dto.PlanListResponse, error) {
	plans, err := s.subRepo.ListActivePlans()
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanListResponse{Plans: make([]*dto.PlanItem, 0, len(plans))}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, buildPlanItem(p))
	}

	if userID != nil {
		active, err := s.subRepo.GetActiveByUser(*userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if active != nil {
			resp.ActiveSubscription = buildSubscriptionInfo(active)
		}
	}
	return resp, nil
}

// Subscribe 创建订阅的托管结账会话；已有生效订阅时不会请求支付服务
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID int64) (*dto.CheckoutResponse, error) {
	plan, err := s.subRepo.GetActivePlanByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	active, err := s.subRepo.HasActive(userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrActiveSubscriptionExists
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	base := strings.TrimRight(s.cfg.Server.BaseURL, "/")
	req := &payment.CheckoutRequest{
		Currency: s.cfg.Payment.Currency,
		LineItems: []payment.LineItem{{
			Name:       plan.Name,
			UnitAmount: plan.Price,
			Quantity:   1,
		}},
		Metadata:   payment.EncodeSubscriptionMetadata(userID, plan.ID, plan.Price),
		SuccessURL: fmt.Sprintf("%s/subscriptions/success?plan_id=%d", base, plan.ID),
		CancelURL:  base + "/subscriptions/cancel",
	}
	if user.Email != nil {
		req.CustomerEmail = *user.Email
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		logger.Error("create subscription checkout failed", "user_id", userID, "plan_id", planID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	logger.Info("subscription checkout created", "user_id", userID, "plan_id", planID, "session_id", session.ID)
	return &dto.CheckoutResponse{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// ListSubscriptions 用户的订阅记录
func (s *SubscriptionService) ListSubscriptions(userID int64) ([]*dto.SubscriptionInfo, error) {
	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		items = append(items, buildSubscriptionInfo(sub))
	}
	return items, nil
}

// SubscribeSuccess 支付成功回跳提示，订阅由回调创建
func (s *SubscriptionService) SubscribeSuccess(planID int64) (*dto.SubscriptionResultResponse, error) {
	resp := &dto.SubscriptionResultResponse{Message: "订阅支付成功，稍后即可生效"}
	if planID == 0 {
		return resp, nil
	}
	plan, err := s.subRepo.GetPlanByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	resp.Plan = buildPlanItem(plan)
	return resp, nil
}

// ExpireDue 失效所有已到期的订阅
func (s *SubscriptionService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.subRepo.ExpireDue(now)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	return n, nil
}
