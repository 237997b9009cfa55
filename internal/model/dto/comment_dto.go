package dto

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// CommentItem 评论项
type CommentItem struct {
	ID        int64        `json:"id"`
	Content   string       `json:"content"`
	User      *CommentUser `json:"user"`
	IsOwner   bool         `json:"is_owner"`
	CreatedAt string       `json:"created_at"`
}

// CommentUser 评论用户信息
type CommentUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}
