package errors

import "errors"

// 资源 API 返回的基础设施错误，由 repository 层透传给 service 层

var (
	// ErrNotFound 资源不存在（HTTP 404）
	ErrNotFound = errors.New("资源不存在")
	// ErrUnauthorized 资源 API 拒绝访问（HTTP 401），不参与重试
	ErrUnauthorized = errors.New("资源 API 拒绝访问")
	// ErrUpstream 资源 API 返回其他非 2xx 状态
	ErrUpstream = errors.New("资源 API 请求失败")
)
