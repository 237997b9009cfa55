package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/api/middleware"
	"github.com/qs3c/fitness_go_server/internal/model/dto"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
	"github.com/qs3c/fitness_go_server/internal/service"
)

type UploadHandler struct {
	profileService *service.ProfileService
	postService    *service.PostService
	cfg            *config.Config
}

func NewUploadHandler(profileService *service.ProfileService, postService *service.PostService, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		profileService: profileService,
		postService:    postService,
		cfg:            cfg,
	}
}

// ProfilePicture 上传头像
// POST /api/v1/profile/picture
func (h *UploadHandler) ProfilePicture(c *gin.Context) {
	h.upload(c, h.profileService.UploadPicture)
}

// PostImage 上传动态配图
// POST /api/v1/posts/image
func (h *UploadHandler) PostImage(c *gin.Context) {
	h.upload(c, h.postService.UploadImage)
}

func (h *UploadHandler) upload(c *gin.Context, store func(userID int64, data []byte) (string, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}
	defer file.Close()

	if h.cfg.Upload.MaxSize > 0 && header.Size > h.cfg.Upload.MaxSize {
		response.ParamError(c, service.ErrFileTooLarge.Error())
		return
	}

	// 多读一个字节用于判断是否超限
	limit := h.cfg.Upload.MaxSize
	if limit <= 0 {
		limit = header.Size
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}

	url, err := store(userID, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrUnsupportedFileType):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrStorageNotAvailable):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "上传失败")
		}
		return
	}

	response.SuccessWithMessage(c, "上传成功", dto.UploadImageResponse{URL: url})
}
