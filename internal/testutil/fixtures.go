package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	email := fmt.Sprintf("test_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        &email,
		PasswordHash: &passwordHash,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// TestProfile 创建测试档案
func TestProfile(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.UserProfile)) *model.UserProfile {
	t.Helper()

	profile := &model.UserProfile{
		UserID:       userID,
		Bio:          "Lifting every day",
		FitnessGoals: "Squat 200kg",
		Country:      "NZ",
	}

	for _, opt := range opts {
		opt(profile)
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return profile
}

// TestCategory 创建测试分类
func TestCategory(t *testing.T, db *gorm.DB, opts ...func(*model.ProductCategory)) *model.ProductCategory {
	t.Helper()

	category := &model.ProductCategory{
		Name:        fmt.Sprintf("Category %d", next()),
		Description: "Test category",
	}

	for _, opt := range opts {
		opt(category)
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	return category
}

// TestProduct 创建测试商品，默认上架
func TestProduct(t *testing.T, db *gorm.DB, categoryID int64, opts ...func(*model.Product)) *model.Product {
	t.Helper()

	product := &model.Product{
		CategoryID:  categoryID,
		Name:        fmt.Sprintf("Product %d", next()),
		Description: "Test product",
		Price:       decimal.RequireFromString("10.00"),
		Stock:       100,
		IsActive:    true,
	}

	for _, opt := range opts {
		opt(product)
	}

	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return product
}

// WithPrice 设置商品价格
func WithPrice(price string) func(*model.Product) {
	return func(p *model.Product) {
		p.Price = decimal.RequireFromString(price)
	}
}

// WithInactive 设置商品下架
func WithInactive() func(*model.Product) {
	return func(p *model.Product) {
		p.IsActive = false
	}
}

// TestReview 创建测试评价
func TestReview(t *testing.T, db *gorm.DB, productID, userID int64, rating int) *model.ProductReview {
	t.Helper()

	review := &model.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Review:    "Solid gear",
	}

	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}

	return review
}

// TestOrder 创建已支付的测试订单，items 为 商品 -> 数量
func TestOrder(t *testing.T, db *gorm.DB, userID int64, products map[*model.Product]int) *model.Order {
	t.Helper()

	order := &model.Order{
		UserID:     userID,
		IsPaid:     true,
		PaymentRef: fmt.Sprintf("pi_test_%d", next()),
		Total:      decimal.Zero,
	}
	for p, qty := range products {
		item := &model.OrderItem{ProductID: p.ID, Quantity: qty, Price: p.Price}
		order.Items = append(order.Items, item)
		order.Total = order.Total.Add(item.Subtotal())
	}

	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return order
}

// TestPlan 创建测试订阅计划，默认可用
func TestPlan(t *testing.T, db *gorm.DB, opts ...func(*model.SubscriptionPlan)) *model.SubscriptionPlan {
	t.Helper()

	plan := &model.SubscriptionPlan{
		Name:         fmt.Sprintf("Plan %d", next()),
		Description:  "Monthly coaching",
		Price:        decimal.RequireFromString("19.99"),
		DurationDays: 30,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithPlanInactive 设置计划不可用
func WithPlanInactive() func(*model.SubscriptionPlan) {
	return func(p *model.SubscriptionPlan) {
		p.IsActive = false
	}
}

// TestSubscription 创建测试订阅，默认生效
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, plan *model.SubscriptionPlan, opts ...func(*model.UserSubscription)) *model.UserSubscription {
	t.Helper()

	sub := &model.UserSubscription{
		UserID:     userID,
		PlanID:     plan.ID,
		Plan:       plan,
		IsActive:   true,
		PaymentRef: fmt.Sprintf("pi_sub_%d", next()),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Omit("Plan").Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithPeriod 设置订阅起止时间
func WithPeriod(start, end time.Time) func(*model.UserSubscription) {
	return func(s *model.UserSubscription) {
		s.StartDate = start
		s.EndDate = end
	}
}

// WithSubscriptionInactive 设置订阅失效
func WithSubscriptionInactive() func(*model.UserSubscription) {
	return func(s *model.UserSubscription) {
		s.IsActive = false
	}
}

// TestPost 创建测试动态
func TestPost(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.AchievementPost)) *model.AchievementPost {
	t.Helper()

	post := &model.AchievementPost{
		UserID:  userID,
		Title:   fmt.Sprintf("New PR %d", next()),
		Content: "Deadlift **180kg** today",
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return post
}

// WithCreatedAt 设置动态创建时间
func WithCreatedAt(at time.Time) func(*model.AchievementPost) {
	return func(p *model.AchievementPost) {
		p.CreatedAt = at
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, userID, postID int64) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: fmt.Sprintf("Nice work %d", next()),
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	db.Model(&model.AchievementPost{}).Where("id = ?", postID).
		Update("comment_count", gorm.Expr("comment_count + 1"))

	return comment
}

// TestLike 创建测试点赞
func TestLike(t *testing.T, db *gorm.DB, userID, postID int64) *model.Like {
	t.Helper()

	like := &model.Like{UserID: userID, PostID: postID}

	if err := db.Create(like).Error; err != nil {
		t.Fatalf("Failed to create test like: %v", err)
	}
	db.Model(&model.AchievementPost{}).Where("id = ?", postID).
		Update("like_count", gorm.Expr("like_count + 1"))

	return like
}
