package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	UserID     int64           `gorm:"not null;index" json:"user_id"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	IsPaid     bool            `gorm:"default:false" json:"is_paid"`
	PaymentRef string          `gorm:"size:255;uniqueIndex;not null" json:"payment_ref"` // payment intent id
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	User  *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []*OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细，Price 为下单时的价格快照
type OrderItem struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 单项小计
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
