package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile 健身档案，每个用户一份
type UserProfile struct {
	ID             int64            `gorm:"primaryKey" json:"id"`
	UserID         int64            `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio            string           `gorm:"type:text" json:"bio"`
	ProfilePicture string           `gorm:"size:500" json:"profile_picture"`
	FitnessGoals   string           `gorm:"type:text" json:"fitness_goals"`
	Height         *decimal.Decimal `gorm:"type:decimal(5,2)" json:"height,omitempty"` // cm
	Weight         *decimal.Decimal `gorm:"type:decimal(5,2)" json:"weight,omitempty"` // kg
	DateOfBirth    *time.Time       `gorm:"type:date" json:"date_of_birth,omitempty"`
	Country        string           `gorm:"size:2" json:"country"` // ISO 3166-1 alpha-2
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// Age 按周岁计算年龄，未填写生日时返回 nil
func (p *UserProfile) Age(now time.Time) *int {
	if p.DateOfBirth == nil {
		return nil
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}
