package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/pkg/response"
)

// paramID 解析路径中的 ID，失败时直接写入参数错误
func paramID(c *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, message)
		return 0, false
	}
	return id, true
}
