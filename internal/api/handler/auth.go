package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrUsernameExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, "注册成功", resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// GithubAuth 获取 GitHub 授权地址
// GET /api/v1/auth/github?redirect=/posts
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	var req dto.GithubAuthRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	url, err := h.authService.GithubAuthURL(c.Request.Context(), req.Redirect)
	if err != nil {
		logger.Error("generate oauth state failed", "error", err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.GithubAuthResponse{AuthURL: url})
}

// GithubCallback GitHub 登录回调
// GET /api/v1/auth/github/callback?code=xxx&state=xxx
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	var req dto.GithubCallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, _, err := h.authService.GithubCallback(c.Request.Context(), req.Code, req.State)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOAuthState):
			response.AuthError(c, err.Error())
		default:
			logger.Error("github login failed", "error", err)
			response.AuthError(c, "GitHub 登录失败")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
