// Package resourceapi 外部资源 API 客户端
//
// 资源 API 是 json-server 风格的 REST 服务，暴露 /students /payments
// /courses /users 四个集合。本包只负责传输：URL 拼接、JSON 编解码、
// 重试策略与状态码到错误的映射，不做任何业务判断。
//
// 重试策略：只有 GET 会重试，最多 RetryMax 次（默认 2），连接错误 / 5xx / 429 重试，
// 401 永不重试。POST / PUT / PATCH / DELETE 只发送一次：上游可能已经写入
// 却返回 5xx 或超时，重发会在只追加的缴费流水里产生重复记录。
package resourceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"fee-admin/backend/config"
	apperrors "fee-admin/backend/pkg/errors"
)

// 集合名称
const (
	Students = "students"
	Payments = "payments"
	Courses  = "courses"
	Users    = "users"
)

// maxErrorBody 错误响应体最多读取的字节数（写入日志）
const maxErrorBody = 512

type requestIDKey struct{}

// WithRequestID 将请求追踪 ID 写入 context，发往资源 API 的请求会带上 X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Client 资源 API 客户端
type Client struct {
	baseURL string
	http    *retryablehttp.Client // 读请求
	once    *retryablehttp.Client // 写请求，不重试
	logger  *zap.Logger
}

// NewClient 创建资源 API 客户端
func NewClient(cfg *config.ResourceAPIConfig, logger *zap.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	rc.CheckRetry = RetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &leveledLogger{s: logger.Named("resourceapi").Sugar()}

	once := retryablehttp.NewClient()
	once.HTTPClient = rc.HTTPClient
	once.RetryMax = 0
	once.CheckRetry = RetryPolicy
	once.ErrorHandler = retryablehttp.PassthroughErrorHandler
	once.Logger = rc.Logger

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    rc,
		once:    once,
		logger:  logger,
	}
}

// RetryPolicy 在默认策略基础上禁止对 401 重试
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// List GET /{collection}?query
func (c *Client) List(ctx context.Context, collection string, query url.Values, dst interface{}) error {
	return c.do(ctx, http.MethodGet, c.collectionURL(collection, "", query), nil, dst)
}

// Get GET /{collection}/{id}
func (c *Client) Get(ctx context.Context, collection, id string, dst interface{}) error {
	return c.do(ctx, http.MethodGet, c.collectionURL(collection, id, nil), nil, dst)
}

// Create POST /{collection}，dst 接收服务端回写的记录（含生成的 id）
func (c *Client) Create(ctx context.Context, collection string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPost, c.collectionURL(collection, "", nil), body, dst)
}

// Replace PUT /{collection}/{id}
func (c *Client) Replace(ctx context.Context, collection, id string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPut, c.collectionURL(collection, id, nil), body, dst)
}

// Patch PATCH /{collection}/{id}
func (c *Client) Patch(ctx context.Context, collection, id string, body, dst interface{}) error {
	return c.do(ctx, http.MethodPatch, c.collectionURL(collection, id, nil), body, dst)
}

// Delete DELETE /{collection}/{id}
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.collectionURL(collection, id, nil), nil, nil)
}

func (c *Client) collectionURL(collection, id string, query url.Values) string {
	u := c.baseURL + "/" + collection
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, dst interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok && rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.http
	if method != http.MethodGet {
		client = c.once
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstream, method, rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("资源 API 返回错误状态",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return fmt.Errorf("%w: %s %s -> %d", apperrors.ErrUpstream, method, rawURL, resp.StatusCode)
	}

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// leveledLogger 将 retryablehttp 的日志接到 zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
