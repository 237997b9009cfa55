package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/internal/pkg/jwt"
	"github.com/qs3c/fitness_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"

	// 浏览器 WebSocket 无法设置请求头，token 放在查询参数中
	tokenQueryParam = "token"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present := bearerToken(c)
		if !present {
			response.AuthError(c, "请先登录")
			c.Abort()
			return
		}
		if tokenString == "" {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "登录已过期，请重新登录")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 可选认证，token 无效时按未登录处理
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, _ := bearerToken(c); tokenString != "" {
			if claims, err := jwt.ParseToken(tokenString, jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// bearerToken 读取 Authorization 头，没有时读取 token 查询参数
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return "", true
		}
		return strings.TrimSpace(token), true
	}
	if token := c.Query(tokenQueryParam); token != "" {
		return token, true
	}
	return "", false
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// OptionalUserID 未登录时返回 nil
func OptionalUserID(c *gin.Context) *int64 {
	if id, ok := GetUserID(c); ok {
		return &id
	}
	return nil
}
