package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var ErrOrderNotFound = errors.New("订单不存在")

type OrderService struct {
	orderRepo *repository.OrderRepository
	store     cart.Store
}

func NewOrderService(orderRepo *repository.OrderRepository, store cart.Store) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		store:     store,
	}
}

// List 用户订单，最新在前
func (s *OrderService) List(userID int64) ([]*dto.OrderSummary, error) {
	orders, err := s.orderRepo.ListByUser(userID, 0)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.OrderSummary, 0, len(orders))
	for _, o := range orders {
		items = append(items, buildOrderSummary(o))
	}
	return items, nil
}

// Detail 订单详情，只能查看自己的订单
func (s *OrderService) Detail(userID, orderID int64) (*dto.OrderDetail, error) {
	order, err := s.orderRepo.GetByIDForUser(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	detail := &dto.OrderDetail{
		OrderSummary: *buildOrderSummary(order),
		PaymentRef:   order.PaymentRef,
		Items:        make([]*dto.OrderItemInfo, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		info := &dto.OrderItemInfo{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     money(item.Price),
			Subtotal:  money(item.Subtotal()),
		}
		if item.Product != nil {
			info.Name = item.Product.Name
		}
		detail.Items = append(detail.Items, info)
	}
	return detail, nil
}

// Success 支付成功回跳，清空购物车
func (s *OrderService) Success(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, userID)
}
