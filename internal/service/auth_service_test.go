package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/model"
	pkgerrors "siwes-logbook/pkg/errors"
)

func studentRegistration(email, matric string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		FullName:        "Ada Obi",
		Email:           email,
		Password:        "password123",
		PasswordConfirm: "password123",
		Role:            model.RoleStudent,
		MatricNumber:    matric,
		Title:           "Dr",
		LecturerID:      "L-1",
	}
}

// ── Register 测试 ──

func TestAuthService_Register_Student(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.Auth.Register(context.Background(), studentRegistration("  Ada.Obi@Uni.Test ", "CSC/001"))
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.Email != "ada.obi@uni.test" {
		t.Errorf("期望邮箱规范化，实际 %s", resp.Email)
	}
	if resp.Username != "ada.obi" {
		t.Errorf("期望用户名 ada.obi，实际 %s", resp.Username)
	}

	user := env.users.users[resp.ID]
	if user.Matric() != "CSC/001" {
		t.Errorf("学号不符: %s", user.Matric())
	}
	// 学生不保留导师专属字段
	if user.Title != nil || user.LecturerID != nil {
		t.Error("期望学生的 title / lecturer_id 被丢弃")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")) != nil {
		t.Error("期望密码以 bcrypt 存储")
	}
}

func TestAuthService_Register_Supervisor(t *testing.T) {
	env := newTestEnv()
	req := studentRegistration("ben@uni.test", "CSC/001")
	req.Role = model.RoleSupervisor

	resp, err := env.svc.Auth.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	user := env.users.users[resp.ID]
	if user.MatricNumber != nil {
		t.Error("期望导师不保留学号")
	}
	if user.Title == nil || *user.Title != "Dr" || user.LecturerID == nil {
		t.Error("期望保存 title / lecturer_id")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Auth.Register(context.Background(), studentRegistration("ada@uni.test", "CSC/001")); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}

	_, err := env.svc.Auth.Register(context.Background(), studentRegistration("ADA@uni.test", "CSC/002"))
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("期望 ErrEmailExists，实际 %v", err)
	}
}

func TestAuthService_Register_DuplicateMatric(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Auth.Register(context.Background(), studentRegistration("ada@uni.test", "CSC/001")); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}

	_, err := env.svc.Auth.Register(context.Background(), studentRegistration("bola@uni.test", "CSC/001"))
	if !errors.Is(err, ErrMatricExists) {
		t.Fatalf("期望 ErrMatricExists，实际 %v", err)
	}
	if len(env.users.users) != 1 {
		t.Error("期望未创建第二个用户")
	}
}

func TestAuthService_Register_MatricRequired(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Auth.Register(context.Background(), studentRegistration("ada@uni.test", " "))
	if !errors.Is(err, ErrMatricRequired) || !errors.Is(err, pkgerrors.ErrValidation) {
		t.Fatalf("期望 ErrMatricRequired，实际 %v", err)
	}
}

func TestAuthService_Register_UsernameSuffix(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	r1, _ := env.svc.Auth.Register(ctx, studentRegistration("ada@uni.test", "CSC/001"))
	r2, err := env.svc.Auth.Register(ctx, studentRegistration("ada@other.test", "CSC/002"))
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	r3, _ := env.svc.Auth.Register(ctx, studentRegistration("ada@third.test", "CSC/003"))

	if r1.Username != "ada" || r2.Username != "ada1" || r3.Username != "ada2" {
		t.Errorf("期望 ada, ada1, ada2，实际 %s, %s, %s", r1.Username, r2.Username, r3.Username)
	}
}

func TestAuthService_Register_RetryOnUsernameRace(t *testing.T) {
	env := newTestEnv()
	// 第一次写入撞上唯一索引（并发注册占用了同一用户名）
	env.users.createErrs = []error{gorm.ErrDuplicatedKey}

	resp, err := env.svc.Auth.Register(context.Background(), studentRegistration("ada@uni.test", "CSC/001"))
	if err != nil {
		t.Fatalf("期望重试后成功: %v", err)
	}
	if resp.Username != "ada" {
		t.Errorf("期望用户名 ada，实际 %s", resp.Username)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	env := newTestEnv()
	req := studentRegistration("ada@uni.test", "CSC/001")
	req.Role = "admin"

	if _, err := env.svc.Auth.Register(context.Background(), req); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("期望 ErrInvalidRole，实际 %v", err)
	}
}

// ── Login / Logout 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	env := newTestEnv()
	env.supervisor("sup-1", "Ben Eze")

	resp, err := env.svc.Auth.Login(context.Background(), &dto.LoginRequest{Email: "SUP-1@uni.test", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	claims, err := env.jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Token 无法解析: %v", err)
	}
	if claims.UserID != "sup-1" || claims.Role != model.RoleSupervisor {
		t.Errorf("Token 内容不符: %+v", claims)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("期望 ExpiresIn=3600，实际 %d", resp.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv()
	env.supervisor("sup-1", "Ben Eze")

	_, err := env.svc.Auth.Login(context.Background(), &dto.LoginRequest{Email: "sup-1@uni.test", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Auth.Login(context.Background(), &dto.LoginRequest{Email: "ghost@uni.test", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	env := newTestEnv()
	env.supervisor("sup-1", "Ben Eze").IsActive = false

	_, err := env.svc.Auth.Login(context.Background(), &dto.LoginRequest{Email: "sup-1@uni.test", Password: "password123"})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("期望 ErrAccountDisabled，实际 %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv()

	if err := env.svc.Auth.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := env.tokens.blacklisted["jti-1"]
	if !ok || ttl <= 0 || ttl > time.Hour {
		t.Errorf("黑名单 TTL 不符: %v", ttl)
	}
}
