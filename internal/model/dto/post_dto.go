package dto

// PostListRequest 动态列表请求参数
type PostListRequest struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=10" binding:"min=1,max=50"`
}

// CreatePostRequest 发布动态
type CreatePostRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required,max=20000"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=500"`
}

// UpdatePostRequest 更新动态
type UpdatePostRequest struct {
	Title    *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Content  *string `json:"content,omitempty" binding:"omitempty,min=1,max=20000"`
	ImageURL *string `json:"image_url,omitempty" binding:"omitempty,max=500"`
}

// PostAuthor 动态作者
type PostAuthor struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// PostItem 动态列表项
type PostItem struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Excerpt      string      `json:"excerpt"`
	ImageURL     string      `json:"image_url"`
	LikeCount    int         `json:"like_count"`
	CommentCount int         `json:"comment_count"`
	UserHasLiked bool        `json:"user_has_liked"`
	Author       *PostAuthor `json:"author"`
	CreatedAt    string      `json:"created_at"`
}

// PostDetail 动态详情
type PostDetail struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	ContentHTML  string         `json:"content_html"`
	ImageURL     string         `json:"image_url"`
	LikeCount    int            `json:"like_count"`
	CommentCount int            `json:"comment_count"`
	UserHasLiked bool           `json:"user_has_liked"`
	IsOwner      bool           `json:"is_owner"`
	Author       *PostAuthor    `json:"author"`
	Comments     []*CommentItem `json:"comments"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// CreatePostResponse 发布结果
type CreatePostResponse struct {
	ID int64 `json:"id"`
}

// LikeResponse 点赞响应
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// HomeResponse 首页
type HomeResponse struct {
	LatestPosts []*PostItem `json:"latest_posts"`
}

// UploadImageResponse 图片上传结果
type UploadImageResponse struct {
	URL string `json:"url"`
}
