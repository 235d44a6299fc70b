package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"siwes-logbook/config"
	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
	pkgerrors "siwes-logbook/pkg/errors"
	"siwes-logbook/pkg/jwt"
	"siwes-logbook/pkg/username"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindPermission, "Invalid email or password.")
	ErrAccountDisabled    = pkgerrors.New(pkgerrors.KindPermission, "This account is disabled.")
	ErrEmailExists        = pkgerrors.New(pkgerrors.KindConflict, "A user with that email already exists.")
	ErrMatricExists       = pkgerrors.New(pkgerrors.KindConflict, "A student with that matric number already exists.")
	ErrMatricRequired     = pkgerrors.New(pkgerrors.KindValidation, "matric_number is required for students")
	ErrInvalidRole        = pkgerrors.New(pkgerrors.KindValidation, "role must be student or supervisor")
	ErrUsernameExhausted  = errors.New("failed to allocate a unique username")
)

// usernameAttempts 唯一用户名冲突重试次数
const usernameAttempts = 5

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 Token 加入黑名单直至其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例，tokens 可为 nil
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	user := &model.User{
		Email:      email,
		FullName:   strings.TrimSpace(req.FullName),
		Department: strings.TrimSpace(req.Department),
		IsActive:   true,
	}

	// 1. 按角色变体填充专属字段，另一角色的字段一律丢弃
	switch in := req.RoleInput().(type) {
	case dto.StudentInput:
		if in.MatricNumber == "" {
			return nil, ErrMatricRequired
		}
		matric := in.MatricNumber
		user.Role = model.RoleStudent
		user.MatricNumber = &matric
	case dto.SupervisorInput:
		user.Role = model.RoleSupervisor
		user.Title = optionalString(in.Title)
		user.LecturerID = optionalString(in.LecturerID)
	default:
		return nil, ErrInvalidRole
	}

	// 2. 唯一性预检（最终由唯一索引保证）
	if err := s.checkUnique(ctx, user); err != nil {
		return nil, err
	}

	// 3. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)

	// 4. 生成用户名并写入，并发注册撞上唯一索引时重新生成
	base := username.Base(email)
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		existing, err := s.repo.User.ListUsernamesWithPrefix(ctx, base)
		if err != nil {
			s.logger.Error("查询用户名失败", zap.Error(err))
			return nil, err
		}
		user.Username = username.Generate(email, existing)

		err = s.repo.User.Create(ctx, user)
		if err == nil {
			s.logger.Info("用户注册成功",
				zap.String("user_id", user.UserID),
				zap.String("role", user.Role))
			return &dto.RegisterResponse{
				ID:       user.UserID,
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
			}, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("创建用户失败", zap.Error(err))
			return nil, err
		}
		// 邮箱或学号被并发注册占用时直接返回冲突
		if err := s.checkUnique(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("用户名冲突，重新生成", zap.String("username", user.Username))
	}
	return nil, ErrUsernameExhausted
}

func (s *authService) checkUnique(ctx context.Context, user *model.User) error {
	if _, err := s.repo.User.GetByEmail(ctx, user.Email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return err
	}
	if user.MatricNumber == nil {
		return nil
	}
	if _, err := s.repo.User.GetByMatricNumber(ctx, *user.MatricNumber); err == nil {
		return ErrMatricExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学号失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Login / Logout ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// 3. 生成 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.tokens == nil || jti == "" {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Department:   u.Department,
		Role:         u.Role,
		MatricNumber: u.Matric(),
	}
	if u.Title != nil {
		resp.Title = *u.Title
	}
	if u.LecturerID != nil {
		resp.LecturerID = *u.LecturerID
	}
	if u.Supervisor != nil {
		resp.Supervisor = toSupervisorBrief(u.Supervisor)
	}
	return resp
}

func toSupervisorBrief(u *model.User) *dto.PersonBrief {
	return &dto.PersonBrief{ID: u.UserID, Name: u.TitledName(), Email: u.Email}
}

func toStudentBrief(u *model.User) dto.PersonBrief {
	return dto.PersonBrief{
		ID:           u.UserID,
		Name:         u.DisplayName(),
		Email:        u.Email,
		MatricNumber: u.Matric(),
	}
}

// [自证通过] internal/service/auth_service.go
