package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create 创建动态
func (r *PostRepository) Create(post *model.AchievementPost) error {
	return r.db.Create(post).Error
}

// GetByID 根据 ID 获取动态
func (r *PostRepository) GetByID(id int64) (*model.AchievementPost, error) {
	var post model.AchievementPost
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDWithUser 获取动态及作者信息
func (r *PostRepository) GetByIDWithUser(id int64) (*model.AchievementPost, error) {
	var post model.AchievementPost
	err := r.db.Preload("User").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateFields 更新动态字段
func (r *PostRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.AchievementPost{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除动态及其评论和点赞
func (r *PostRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AchievementPost{}, id).Error
	})
}

// List 分页获取动态，最新在前
func (r *PostRepository) List(page, pageSize int) ([]*model.AchievementPost, int64, error) {
	var posts []*model.AchievementPost
	var total int64

	query := r.db.Model(&model.AchievementPost{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// Latest 获取最新的 n 条动态
func (r *PostRepository) Latest(n int) ([]*model.AchievementPost, error) {
	var posts []*model.AchievementPost
	err := r.db.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&posts).Error
	return posts, err
}
