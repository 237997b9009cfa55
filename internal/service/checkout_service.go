package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var (
	ErrCartEmpty          = errors.New("购物车为空")
	ErrCartTooLarge       = errors.New("购物车商品过多")
	ErrProductUnavailable = errors.New("购物车中有已下架的商品")
	ErrPaymentProvider    = errors.New("支付服务暂不可用，请稍后再试")
)

type CheckoutService struct {
	store       cart.Store
	productRepo *repository.ProductRepository
	userRepo    *repository.UserRepository
	gateway     payment.Gateway
	cfg         *config.Config
}

func NewCheckoutService(
	store cart.Store,
	productRepo *repository.ProductRepository,
	userRepo *repository.UserRepository,
	gateway payment.Gateway,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		store:       store,
		productRepo: productRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		cfg:         cfg,
	}
}

// CheckoutCart 将购物车转换为托管结账会话，订单在支付成功的回调中创建
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID int64) (*dto.CheckoutResponse, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	lines := c.Lines()
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

	items := make([]payment.LineItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive {
			return nil, ErrProductUnavailable
		}
		items = append(items, payment.LineItem{
			Name:       p.Name,
			UnitAmount: l.Price,
			Quantity:   int64(l.Quantity),
		})
	}

	metadata, err := payment.EncodeOrderMetadata(userID, c)
	if err != nil {
		if errors.Is(err, payment.ErrCartTooLarge) {
			return nil, ErrCartTooLarge
		}
		return nil, err
	}

	req := &payment.CheckoutRequest{
		Currency:   s.cfg.Payment.Currency,
		LineItems:  items,
		Metadata:   metadata,
		SuccessURL: s.absoluteURL(s.cfg.Payment.SuccessPath) + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.absoluteURL(s.cfg.Payment.CancelPath),
	}
	if user.Email != nil {
		req.CustomerEmail = *user.Email
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		logger.Error("create checkout session failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	logger.Info("checkout session created", "user_id", userID, "session_id", session.ID, "total", money(c.Total()))
	return &dto.CheckoutResponse{SessionID: session.ID, RedirectURL: session.URL}, nil
}

func (s *CheckoutService) absoluteURL(path string) string {
	return strings.TrimRight(s.cfg.Server.BaseURL, "/") + path
}
