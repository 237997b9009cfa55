package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// ListActivePlans 获取可订阅的计划
func (r *SubscriptionRepository) ListActivePlans() ([]*model.SubscriptionPlan, error) {
	var plans []*model.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// GetPlanByID 获取计划（不区分是否可用）
func (r *SubscriptionRepository) GetPlanByID(id int64) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetActivePlanByID 获取可订阅的计划
func (r *SubscriptionRepository) GetActivePlanByID(id int64) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create 创建订阅
func (r *SubscriptionRepository) Create(sub *model.UserSubscription) error {
	return r.db.Omit("Plan").Create(sub).Error
}

// HasActive 用户是否已有生效订阅
func (r *SubscriptionRepository) HasActive(userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserSubscription{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count > 0, err
}

// GetActiveByUser 获取用户当前生效订阅
func (r *SubscriptionRepository) GetActiveByUser(userID int64) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ExistsByPaymentRef 检查支付流水是否已生成订阅
func (r *SubscriptionRepository) ExistsByPaymentRef(paymentRef string) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserSubscription{}).Where("payment_ref = ?", paymentRef).Count(&count).Error
	return count > 0, err
}

// ListByUser 用户订阅记录，开始时间倒序
func (r *SubscriptionRepository) ListByUser(userID int64) ([]*model.UserSubscription, error) {
	var subs []*model.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

// ExpireDue 将结束时间早于 now 的生效订阅置为失效
// 批量更新不经过 BeforeSave，空模型上没有可补齐的日期
func (r *SubscriptionRepository) ExpireDue(now time.Time) (int64, error) {
	result := r.db.Session(&gorm.Session{SkipHooks: true}).
		Model(&model.UserSubscription{}).
		Where("is_active = ? AND end_date <= ?", true, now).
		Updates(map[string]interface{}{
			"is_active":      false,
			"active_user_id": nil,
		})
	return result.RowsAffected, result.Error
}
