package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/jwt"
)

// ── Mock TokenStore ──

type mockTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = ttl
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	return string(hash)
}

func setupTestAuthService(t *testing.T, tokens TokenStore) (AuthService, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	}}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	r := newTestRepos()
	r.users = newMockUserRepo(
		model.User{ID: "1", Username: "admin", Name: "Admin", Role: model.RoleAdmin, PasswordHash: hashPassword(t, "Admin@123")},
		model.User{ID: "2", Username: "cashier", Name: "Cashier", Role: model.RoleAccountant, PasswordHash: hashPassword(t, "Cash@123")},
		model.User{ID: "3", Username: "viewer", Name: "Viewer", Role: "student", PasswordHash: hashPassword(t, "View@123")},
	)
	r.repo.User = r.users
	return NewAuthService(cfg, r.repo, jwtMgr, tokens, zap.NewNop()), jwtMgr
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, jwtMgr := setupTestAuthService(t, nil)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "cashier", Password: "Cash@123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", resp.ExpiresIn)
	}
	if resp.User.Role != model.RoleAccountant {
		t.Errorf("期望角色 accountant，实际=%s", resp.User.Role)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("签发的 Token 应可解析: %v", err)
	}
	if claims.UserID != "2" || claims.Username != "cashier" {
		t.Errorf("Token 载荷不符: %+v", claims)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _ := setupTestAuthService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"密码错误", "admin", "wrong", ErrInvalidCredentials},
		{"用户不存在", "nobody", "Admin@123", ErrInvalidCredentials},
		{"角色无权登录", "viewer", "View@123", ErrRoleNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Username: tt.username, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_Blacklists(t *testing.T) {
	store := newMockTokenStore()
	svc, _ := setupTestAuthService(t, store)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := store.revoked["jti-1"]
	if !ok {
		t.Fatal("jti 应加入黑名单")
	}
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("黑名单 TTL 应约为 Token 剩余有效期，实际=%v", ttl)
	}
}

func TestAuthService_Logout_WithoutStore(t *testing.T) {
	svc, _ := setupTestAuthService(t, nil)
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("Redis 不可用时 Logout 不应报错: %v", err)
	}
}

// ── Me 测试 ──

func TestAuthService_Me(t *testing.T) {
	svc, _ := setupTestAuthService(t, nil)

	user, err := svc.Me(context.Background(), "1")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("期望 admin，实际=%s", user.Username)
	}
	if _, err := svc.Me(context.Background(), "404"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
