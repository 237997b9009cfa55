package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/api/middleware"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Home 首页
// GET /api/v1/home
func (h *PostHandler) Home(c *gin.Context) {
	resp, err := h.postService.Home(middleware.OptionalUserID(c))
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// List 动态列表
// GET /api/v1/posts?page=1&page_size=10
func (h *PostHandler) List(c *gin.Context) {
	var req dto.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.postService.List(req.Page, req.PageSize, middleware.OptionalUserID(c))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, items)
}

// Get 动态详情
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := paramID(c, "id", "无效的动态ID")
	if !ok {
		return
	}

	detail, err := h.postService.Get(postID, middleware.OptionalUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, detail)
}

// Create 发布动态
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.postService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Created(c, "发布成功", resp)
}

// Update 编辑动态
// PUT /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := paramID(c, "id", "无效的动态ID")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.postService.Update(userID, postID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", detail)
}

// Delete 删除动态
// DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := paramID(c, "id", "无效的动态ID")
	if !ok {
		return
	}

	if err := h.postService.Delete(userID, postID); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Like 点赞或取消点赞
// POST /api/v1/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, ok := paramID(c, "id", "无效的动态ID")
	if !ok {
		return
	}

	resp, err := h.postService.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	message := "已取消点赞"
	if resp.Liked {
		message = "点赞成功"
	}
	response.SuccessWithMessage(c, message, resp)
}

func (h *PostHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrPostPermission):
		response.PermissionError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
