package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string    `json:"token"`
	User     *UserInfo `json:"user"`
	Redirect string    `json:"redirect,omitempty"` // 第三方登录前所在页面
}

// GithubAuthRequest 发起 GitHub 登录
type GithubAuthRequest struct {
	Redirect string `form:"redirect" binding:"omitempty,max=500"`
}

// GithubCallbackRequest GitHub 回调参数
type GithubCallbackRequest struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

// GithubAuthResponse GitHub 授权地址
type GithubAuthResponse struct {
	AuthURL string `json:"auth_url"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt string `json:"created_at,omitempty"`
}
