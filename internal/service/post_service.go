package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/markdown"
	"github.com/qs3c/fitness_go_server/internal/pkg/oss"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
	"github.com/qs3c/fitness_go_server/internal/repository"
)

const (
	homeLatestPosts = 3
	excerptLength   = 140
)

var (
	ErrPostNotFound   = errors.New("动态不存在")
	ErrPostPermission = errors.New("无权操作此动态")
)

// Notifier 用户通知
type Notifier interface {
	Publish(ctx context.Context, n *pubsub.Notification) error
}

type PostService struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	likeRepo    *repository.LikeRepository
	renderer    *markdown.Renderer
	storage     ImageStorage
	notifier    Notifier
	cfg         *config.Config
}

func NewPostService(
	postRepo *repository.PostRepository,
	commentRepo *repository.CommentRepository,
	likeRepo *repository.LikeRepository,
	renderer *markdown.Renderer,
	storage ImageStorage,
	notifier Notifier,
	cfg *config.Config,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		renderer:    renderer,
		storage:     storage,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// List 动态列表，最新在前
func (s *PostService) List(page, pageSize int, viewerID *int64) ([]*dto.PostItem, int64, error) {
	posts, total, err := s.postRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.buildPostItems(posts, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Home 首页最新动态
func (s *PostService) Home(viewerID *int64) (*dto.HomeResponse, error) {
	posts, err := s.postRepo.Latest(homeLatestPosts)
	if err != nil {
		return nil, err
	}
	items, err := s.buildPostItems(posts, viewerID)
	if err != nil {
		return nil, err
	}
	return &dto.HomeResponse{LatestPosts: items}, nil
}

// Get 动态详情，正文渲染为净化后的 HTML，评论最新在前
func (s *PostService) Get(postID int64, viewerID *int64) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetByIDWithUser(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	contentHTML, err := s.renderer.ToHTML(post.Content)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPostID(postID)
	if err != nil {
		return nil, err
	}

	detail := &dto.PostDetail{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		ContentHTML:  contentHTML,
		ImageURL:     post.ImageURL,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		Author:       buildAuthor(post.User),
		Comments:     make([]*dto.CommentItem, 0, len(comments)),
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    post.UpdatedAt.Format(time.RFC3339),
	}

	for _, c := range comments {
		item := buildCommentItem(c)
		item.IsOwner = viewerID != nil && c.UserID == *viewerID
		detail.Comments = append(detail.Comments, item)
	}

	if viewerID != nil {
		detail.IsOwner = post.UserID == *viewerID
		detail.UserHasLiked, err = s.likeRepo.Exists(postID, *viewerID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Create 发布动态
func (s *PostService) Create(userID int64, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	post := &model.AchievementPost{
		UserID:   userID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	logger.Info("achievement post created", "post_id", post.ID, "user_id", userID)
	return &dto.CreatePostResponse{ID: post.ID}, nil
}

// Update 更新自己的动态
func (s *PostService) Update(userID, postID int64, req *dto.UpdatePostRequest) (*dto.PostDetail, error) {
	if _, err := s.ownPost(userID, postID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if len(fields) > 0 {
		if err := s.postRepo.UpdateFields(postID, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(postID, &userID)
}

// Delete 删除自己的动态
func (s *PostService) Delete(userID, postID int64) error {
	if _, err := s.ownPost(userID, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(postID)
}

// ToggleLike 点赞或取消点赞
func (s *PostService) ToggleLike(ctx context.Context, userID, postID int64) (*dto.LikeResponse, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(postID, userID)
	if err != nil {
		return nil, err
	}

	if liked && post.UserID != userID {
		notify(ctx, s.notifier, &pubsub.Notification{
			Type:   pubsub.TypePostLiked,
			UserID: post.UserID,
			Data:   map[string]interface{}{"post_id": postID, "by_user_id": userID, "like_count": count},
		})
	}

	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// UploadImage 上传动态配图，返回地址供创建或编辑动态时使用
func (s *PostService) UploadImage(userID int64, data []byte) (string, error) {
	if s.storage == nil {
		return "", ErrStorageNotAvailable
	}
	if s.cfg.Upload.MaxSize > 0 && int64(len(data)) > s.cfg.Upload.MaxSize {
		return "", ErrFileTooLarge
	}

	url, err := s.storage.UploadImage(oss.FolderPosts, userID, data, s.cfg.Upload.AllowedTypes)
	if err != nil {
		if errors.Is(err, oss.ErrUnsupportedType) {
			return "", ErrUnsupportedFileType
		}
		return "", err
	}
	return url, nil
}

func (s *PostService) ownPost(userID, postID int64) (*model.AchievementPost, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrPostPermission
	}
	return post, nil
}

func (s *PostService) buildPostItems(posts []*model.AchievementPost, viewerID *int64) ([]*dto.PostItem, error) {
	liked := map[int64]bool{}
	if viewerID != nil && len(posts) > 0 {
		ids := make([]int64, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		var err error
		liked, err = s.likeRepo.LikedPostIDs(*viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]*dto.PostItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, &dto.PostItem{
			ID:           p.ID,
			Title:        p.Title,
			Excerpt:      s.excerpt(p.Content),
			ImageURL:     p.ImageURL,
			LikeCount:    p.LikeCount,
			CommentCount: p.CommentCount,
			UserHasLiked: liked[p.ID],
			Author:       buildAuthor(p.User),
			CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// excerpt 渲染后去掉标签再截断
func (s *PostService) excerpt(content string) string {
	rendered, err := s.renderer.ToHTML(content)
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(html.UnescapeString(s.renderer.StripTags(rendered))), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	return string([]rune(text)[:excerptLength]) + "…"
}

// notify 发送通知，失败只记录日志
func notify(ctx context.Context, n Notifier, msg *pubsub.Notification) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, msg); err != nil {
		logger.Warn("publish notification failed", "type", msg.Type, "user_id", msg.UserID, "error", err)
	}
}
