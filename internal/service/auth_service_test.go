package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"care-station/backend/config"
	"care-station/backend/internal/dto"
	"care-station/backend/internal/model"
	"care-station/backend/internal/repository"
	"care-station/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo) {
	users := newMockUserRepo()
	repo := &repository.Repository{
		User:       users,
		Attendance: newMockAttendanceRepo(),
		Break:      newMockBreakRepo(),
		Report:     newMockReportRepo(),
		Annotation: newMockAnnotationRepo(),
		Closure:    newMockClosureRepo(),
	}
	cfg := &config.AuthConfig{
		JWTSecret:       "test-secret-key-16chars!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}
	jwtMgr := jwt.NewManager(cfg)
	svc := NewAuthService(repo, jwtMgr, nil, cfg, zap.NewNop())
	return svc, users
}

func addTestUser(t *testing.T, users *mockUserRepo, id, loginID, password, role, category string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	users.users[id] = &model.User{
		UserID:       id,
		Name:         "测试用户",
		LoginID:      loginID,
		PasswordHash: string(hash),
		Role:         role,
		Category:     category,
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		LoginID: "tanaka", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("登录响应应包含 access/refresh token")
	}
	if result.User.Category != model.CategoryHome {
		t.Errorf("期望Category=home，实际=%s", result.User.Category)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		LoginID: "tanaka", Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		LoginID: "nobody", Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── Refresh 测试 ──

func TestAuthService_Refresh_Success(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	ctx := context.Background()
	login, err := svc.Login(ctx, &dto.LoginRequest{LoginID: "tanaka", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	result, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("刷新响应应包含新 access token")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	ctx := context.Background()
	login, err := svc.Login(ctx, &dto.LoginRequest{LoginID: "tanaka", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	_, err = svc.Refresh(ctx, login.AccessToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("access token 不应能用于刷新，实际: %v", err)
	}
}

// ── ChangePassword 测试 ──

func TestAuthService_ChangePassword_Success(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	ctx := context.Background()
	err := svc.ChangePassword(ctx, "u1", &dto.ChangePasswordRequest{
		OldPassword: "password123", NewPassword: "new-password-456",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{LoginID: "tanaka", Password: "new-password-456"}); err != nil {
		t.Errorf("新密码应能登录: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{LoginID: "tanaka", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码不应再能登录，实际: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	svc, users := setupTestAuthService()
	addTestUser(t, users, "u1", "tanaka", "password123", model.RoleClient, model.CategoryHome)

	err := svc.ChangePassword(context.Background(), "u1", &dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new-password-456",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong，实际: %v", err)
	}
}
