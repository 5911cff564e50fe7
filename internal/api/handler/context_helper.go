package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fee-admin/backend/pkg/errors"
	"fee-admin/backend/pkg/response"
)

// 上下文键，由 middleware.JWTAuth 注入
const (
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxTokenID   = "token_id"
	ctxTokenExp  = "token_expires_at"
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, ctxRole)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// tokenInfo 当前 Token 的 jti 与过期时间（登出时使用）
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenID)
	exp, _ := c.Get(ctxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// handleUpstreamError 各模块未识别的错误：资源 API 故障返回 502，其余 500
func handleUpstreamError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrUpstream) || errors.Is(err, apperrors.ErrUnauthorized) {
		response.BadGateway(c)
		return
	}
	response.InternalError(c)
}

// sendFile 以附件形式返回文件
func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
