package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

type CartService struct {
	store       cart.Store
	productRepo *repository.ProductRepository
}

func NewCartService(store cart.Store, productRepo *repository.ProductRepository) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
	}
}

// Get 查看购物车
func (s *CartService) Get(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildCartResponse(c)
}

// Add 加入购物车，价格取当前商品价
func (s *CartService) Add(ctx context.Context, userID, productID int64, quantity int) (*dto.CartResponse, error) {
	product, err := s.productRepo.GetActiveByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Add(product.ID, quantity, product.Price)
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.buildCartResponse(c)
}

// Remove 移出购物车，不存在时不报错
func (s *CartService) Remove(ctx context.Context, userID, productID int64) (*dto.CartResponse, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.buildCartResponse(c)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, userID)
}

func (s *CartService) buildCartResponse(c *cart.Cart) (*dto.CartResponse, error) {
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

	resp := &dto.CartResponse{
		Items:    make([]*dto.CartLineItem, 0, len(lines)),
		Quantity: c.Quantity(),
		Total:    money(c.Total()),
	}
	for _, l := range lines {
		item := &dto.CartLineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     money(l.Price),
			Subtotal:  money(l.Subtotal()),
		}
		if p, ok := byID[l.ProductID]; ok {
			item.Name = p.Name
			item.Slug = p.Slug
			item.ImageURL = p.ImageURL
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}
