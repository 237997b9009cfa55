package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/fitness_go_server/internal/model"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 已点赞则取消，否则点赞；返回操作后的状态和点赞数
func (r *LikeRepository) Toggle(postID, userID int64) (liked bool, likeCount int, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{})
		if result.Error != nil {
			return result.Error
		}

		delta := "like_count - 1"
		if result.RowsAffected == 0 {
			created := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.Like{PostID: postID, UserID: userID})
			if created.Error != nil {
				return created.Error
			}
			liked = true
			if created.RowsAffected == 0 {
				// 并发请求已插入
				return r.loadCount(tx, postID, &likeCount)
			}
			delta = "like_count + 1"
		}

		if err := tx.Model(&model.AchievementPost{}).Where("id = ?", postID).
			Update("like_count", gorm.Expr(delta)).Error; err != nil {
			return err
		}
		return r.loadCount(tx, postID, &likeCount)
	})
	return liked, likeCount, err
}

func (r *LikeRepository) loadCount(tx *gorm.DB, postID int64, out *int) error {
	return tx.Model(&model.AchievementPost{}).Where("id = ?", postID).Select("like_count").Scan(out).Error
}

// Exists 用户是否点赞了动态
func (r *LikeRepository) Exists(postID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// LikedPostIDs 返回用户在给定动态中点赞过的 ID 集合
func (r *LikeRepository) LikedPostIDs(userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}

	var ids []int64
	err := r.db.Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// CountByPostID 获取动态的点赞数
func (r *LikeRepository) CountByPostID(postID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
