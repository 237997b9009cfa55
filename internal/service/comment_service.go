package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/markdown"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

var (
	ErrCommentNotFound   = errors.New("评论不存在")
	ErrCommentPermission = errors.New("无权操作此评论")
	ErrCommentEmpty      = errors.New("评论内容不能为空")
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	userRepo    *repository.UserRepository
	renderer    *markdown.Renderer
	notifier    Notifier
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	renderer *markdown.Renderer,
	notifier Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		notifier:    notifier,
	}
}

// Create 创建评论，并通知动态作者
func (s *CommentService) Create(ctx context.Context, userID, postID int64, req *dto.CreateCommentRequest) (*dto.CommentItem, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	// 评论为纯文本
	content := strings.TrimSpace(html.UnescapeString(s.renderer.StripTags(req.Content)))
	if content == "" {
		return nil, ErrCommentEmpty
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
		User:    user,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if post.UserID != userID {
		notify(ctx, s.notifier, &pubsub.Notification{
			Type:   pubsub.TypePostCommented,
			UserID: post.UserID,
			Data: map[string]interface{}{
				"post_id":    postID,
				"comment_id": comment.ID,
				"by_user":    user.Username,
			},
		})
	}

	item := buildCommentItem(comment)
	item.IsOwner = true
	return item, nil
}

// Delete 删除自己的评论
func (s *CommentService) Delete(userID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID {
		return ErrCommentPermission
	}

	return s.commentRepo.Delete(comment)
}

func buildCommentItem(c *model.Comment) *dto.CommentItem {
	return &dto.CommentItem{
		ID:        c.ID,
		Content:   c.Content,
		User:      buildCommentUser(c.User),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
