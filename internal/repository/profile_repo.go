package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID 获取用户档案
func (r *ProfileRepository) GetByUserID(userID int64) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOrCreate 获取档案，不存在时创建空档案
func (r *ProfileRepository) GetOrCreate(userID int64) (*model.UserProfile, error) {
	profile := &model.UserProfile{UserID: userID}
	// 并发首次访问时依赖 user_id 唯一索引
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(profile).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

// UpdateFields 更新档案字段
func (r *ProfileRepository) UpdateFields(userID int64, fields map[string]interface{}) error {
	return r.db.Model(&model.UserProfile{}).Where("user_id = ?", userID).Updates(fields).Error
}
