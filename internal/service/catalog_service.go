package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var (
	ErrCategoryNotFound = errors.New("分类不存在")
	ErrProductNotFound  = errors.New("商品不存在")
	ErrReviewNotAllowed = errors.New("购买后才能评价")
	ErrAlreadyReviewed  = errors.New("已经评价过该商品")
)

type CatalogService struct {
	productRepo *repository.ProductRepository
	orderRepo   *repository.OrderRepository
}

func NewCatalogService(productRepo *repository.ProductRepository, orderRepo *repository.OrderRepository) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// ListProducts 商品列表，categorySlug 为空时返回全部上架商品
func (s *CatalogService) ListProducts(categorySlug string) (*dto.ProductListResponse, error) {
	categories, err := s.productRepo.ListCategories()
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductListResponse{
		Categories: make([]*dto.CategoryItem, 0, len(categories)),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, buildCategoryItem(c))
	}

	var categoryID int64
	if categorySlug != "" {
		category, err := s.productRepo.GetCategoryBySlug(categorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		categoryID = category.ID
		resp.Category = buildCategoryItem(category)
	}

	products, err := s.productRepo.ListActive(categoryID)
	if err != nil {
		return nil, err
	}
	resp.Products = make([]*dto.ProductItem, 0, len(products))
	for _, p := range products {
		resp.Products = append(resp.Products, buildProductItem(p))
	}
	return resp, nil
}

// ListCategories 全部分类
func (s *CatalogService) ListCategories() ([]*dto.CategoryItem, error) {
	categories, err := s.productRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	items := make([]*dto.CategoryItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, buildCategoryItem(c))
	}
	return items, nil
}

// GetProduct 商品详情，userID 为空表示未登录
func (s *CatalogService) GetProduct(productID int64, slug string, userID *int64) (*dto.ProductDetail, error) {
	product, err := s.productRepo.GetActiveByIDAndSlug(productID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	reviews, err := s.productRepo.ListReviews(product.ID)
	if err != nil {
		return nil, err
	}

	detail := &dto.ProductDetail{
		ProductItem: *buildProductItem(product),
		Description: product.Description,
		Reviews:     make([]*dto.ReviewItem, 0, len(reviews)),
	}
	for _, r := range reviews {
		detail.Reviews = append(detail.Reviews, buildReviewItem(r))
	}

	if userID != nil {
		detail.CanReview, err = s.canReview(product.ID, *userID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// CreateReview 发表评价，需要有包含该商品的已支付订单
func (s *CatalogService) CreateReview(userID, productID int64, req *dto.CreateReviewRequest) (*dto.ReviewItem, error) {
	if _, err := s.productRepo.GetActiveByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	purchased, err := s.orderRepo.HasPurchased(userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrReviewNotAllowed
	}

	review := &model.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Review:    req.Review,
	}
	if err := s.productRepo.CreateReview(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return buildReviewItem(review), nil
}

func (s *CatalogService) canReview(productID, userID int64) (bool, error) {
	reviewed, err := s.productRepo.HasReviewed(productID, userID)
	if err != nil || reviewed {
		return false, err
	}
	return s.orderRepo.HasPurchased(userID, productID)
}

func buildReviewItem(r *model.ProductReview) *dto.ReviewItem {
	return &dto.ReviewItem{
		ID:        r.ID,
		Rating:    r.Rating,
		Review:    r.Review,
		User:      buildCommentUser(r.User),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
