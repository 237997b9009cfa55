package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListCategories 获取全部分类
func (r *ProductRepository) ListCategories() ([]*model.ProductCategory, error) {
	var categories []*model.ProductCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryBySlug 根据 slug 获取分类
func (r *ProductRepository) GetCategoryBySlug(slug string) (*model.ProductCategory, error) {
	var category model.ProductCategory
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListActive 获取上架商品，categoryID 为 0 时不过滤分类
func (r *ProductRepository) ListActive(categoryID int64) ([]*model.Product, error) {
	var products []*model.Product
	query := r.db.Preload("Category").Where("is_active = ?", true)
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

// GetByID 根据 ID 获取商品（不区分上下架）
func (r *ProductRepository) GetByID(id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveByID 获取上架商品
func (r *ProductRepository) GetActiveByID(id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveByIDAndSlug 商品详情，id 与 slug 必须同时匹配
func (r *ProductRepository) GetActiveByIDAndSlug(id int64, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").
		Where("id = ? AND slug = ? AND is_active = ?", id, slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品
func (r *ProductRepository) GetByIDs(ids []int64) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []*model.Product
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// UpdatePrice 修改商品价格
func (r *ProductRepository) UpdatePrice(id int64, price decimal.Decimal) error {
	return r.db.Model(&model.Product{}).Where("id = ?", id).Update("price", price).Error
}

// CreateReview 创建评价
func (r *ProductRepository) CreateReview(review *model.ProductReview) error {
	return r.db.Create(review).Error
}

// ListReviews 获取商品评价，最新在前
func (r *ProductRepository) ListReviews(productID int64) ([]*model.ProductReview, error) {
	var reviews []*model.ProductReview
	err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// HasReviewed 用户是否已评价过商品
func (r *ProductRepository) HasReviewed(productID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProductReview{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}
