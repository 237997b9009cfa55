package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/pkg/slug"
)

type ProductCategory struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

func (c *ProductCategory) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Slug        string          `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	ImageURL    string          `gorm:"size:500" json:"image_url"`
	Stock       int             `gorm:"default:0" json:"stock"`
	IsActive    bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeSave 未指定 slug 时按名称生成
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

// ProductReview 商品评价，每个用户对每个商品仅一条
type ProductReview struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_review_product_user" json:"product_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_review_product_user" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text" json:"review"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}
