package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
}

// ── JWTAuth ──

func TestJWTAuth_InjectsClaims(t *testing.T) {
	mgr := newTestJWT()
	token, _, err := mgr.GenerateAccessToken("u-1", "cashier", "accountant")
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil, zap.NewNop()), func(c *gin.Context) {
		if c.GetString("user_id") != "u-1" || c.GetString("role") != "accountant" {
			t.Errorf("上下文用户信息不符: user_id=%s role=%s", c.GetString("user_id"), c.GetString("role"))
		}
		if c.GetString("token_id") == "" {
			t.Error("期望注入 token_id")
		}
		if _, ok := c.Get("token_expires_at"); !ok {
			t.Error("期望注入 token_expires_at")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("期望 204，实际=%d", w.Code)
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"缺少认证头", ""},
		{"非 Bearer", "Basic abc"},
		{"无效 Token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", JWTAuth(newTestJWT(), nil, zap.NewNop()), func(c *gin.Context) {
				t.Error("不应进入处理器")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("期望 401，实际=%d", w.Code)
			}
		})
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"管理员放行", "admin", http.StatusOK},
		{"会计被拒", "accountant", http.StatusForbidden},
		{"未认证", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/upgrades", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
			}, RoleAuth("admin"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("POST", "/upgrades", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际=%d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ── BodyLimit ──

func TestBodyLimit_RejectsDeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/payments", func(c *gin.Context) {
		t.Error("不应进入处理器")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/payments", strings.NewReader(`{"amount":60000}`)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}

func TestBodyLimit_UnknownLengthTruncated(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/payments", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/payments", bytes.NewReader([]byte(`{"amount":60000}`)))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}

// ── RequestID ──

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	rid := w.Header().Get("X-Request-ID")
	if len(rid) != 36 {
		t.Errorf("期望生成 UUID，实际=%q", rid)
	}
	if w.Body.String() != rid {
		t.Errorf("上下文与响应头不一致: %q vs %q", w.Body.String(), rid)
	}
}

func TestRequestID_KeepsIncomingAndRejectsOversized(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Request-ID", "rid-42")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "rid-42" {
		t.Errorf("期望沿用 rid-42，实际=%q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 ID 应被替换为 UUID，实际=%q", got)
	}
}

// ── RateLimit ──

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("第%d次请求期望 200，实际=%d", i+1, w.Code)
		}
	}
}
