package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubscriptionPlan struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	DurationDays int             `gorm:"not null" json:"duration_days"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// UserSubscription 用户订阅
// ActiveUserID 仅在生效时等于 UserID，用唯一索引保证每个用户最多一个生效订阅
type UserSubscription struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	PlanID       int64     `gorm:"not null;index" json:"plan_id"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null;index" json:"end_date"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	ActiveUserID *int64    `gorm:"uniqueIndex" json:"-"`
	PaymentRef   string    `gorm:"size:255;uniqueIndex;not null" json:"payment_ref"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// EndDateFor 计算订阅结束时间
func EndDateFor(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}

// BeforeSave 未设置时补齐开始和结束时间，并同步生效标记
func (s *UserSubscription) BeforeSave(tx *gorm.DB) error {
	// 条件批量更新时模型为空
	if s.ID == 0 && s.UserID == 0 {
		return nil
	}
	if s.StartDate.IsZero() {
		s.StartDate = time.Now()
	}
	if s.EndDate.IsZero() {
		plan := s.Plan
		if plan == nil {
			plan = &SubscriptionPlan{}
			if err := tx.Session(&gorm.Session{NewDB: true}).First(plan, s.PlanID).Error; err != nil {
				return err
			}
		}
		s.EndDate = EndDateFor(s.StartDate, plan.DurationDays)
	}
	if s.IsActive {
		uid := s.UserID
		s.ActiveUserID = &uid
	} else {
		s.ActiveUserID = nil
	}
	return nil
}
