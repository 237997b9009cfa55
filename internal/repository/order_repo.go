package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 创建订单及明细
func (r *OrderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

// ExistsByPaymentRef 检查支付流水是否已生成订单
func (r *OrderRepository) ExistsByPaymentRef(paymentRef string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Where("payment_ref = ?", paymentRef).Count(&count).Error
	return count > 0, err
}

// GetByPaymentRef 根据支付流水获取订单
func (r *OrderRepository) GetByPaymentRef(paymentRef string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Where("payment_ref = ?", paymentRef).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForUser 获取用户自己的订单详情
func (r *OrderRepository) GetByIDForUser(id, userID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser 获取用户订单，最新在前；limit <= 0 时不限制
func (r *OrderRepository) ListByUser(userID int64, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	query := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

// HasPurchased 用户是否有包含该商品的已支付订单
func (r *OrderRepository) HasPurchased(userID, productID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.is_paid = ? AND order_items.product_id = ?", userID, true, productID).
		Count(&count).Error
	return count > 0, err
}
