package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
	pkgerrors "siwes-logbook/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = pkgerrors.New(pkgerrors.KindNotFound, "User not found.")
	ErrSupervisorNotFound = pkgerrors.New(pkgerrors.KindNotFound, "Supervisor not found.")
	ErrNotSupervisor      = pkgerrors.New(pkgerrors.KindValidation, "The selected user is not a supervisor.")
	ErrNotStudent         = pkgerrors.New(pkgerrors.KindValidation, "Only students can be assigned to a supervisor.")
)

// UserService 用户与导师关联业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	// ListStudents 导师名下学生（反向查询，不单独存储）
	ListStudents(ctx context.Context, supervisorID string) ([]dto.PersonBrief, error)

	// 以下为运维 CLI 使用的关联管理，学生按学号、导师按邮箱定位
	SetSupervisor(ctx context.Context, matric, supervisorEmail string) error
	ClearSupervisor(ctx context.Context, matric string) error
	AssignStudents(ctx context.Context, supervisorEmail string, matrics []string) error
	UnassignStudents(ctx context.Context, supervisorEmail string, matrics []string) error
	// ReplaceStudents 名下学生替换为 matrics，未选中的学生解除关联
	ReplaceStudents(ctx context.Context, supervisorEmail string, matrics []string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListStudents(ctx context.Context, supervisorID string) ([]dto.PersonBrief, error) {
	students, err := s.repo.User.ListStudentsBySupervisor(ctx, supervisorID)
	if err != nil {
		s.logger.Error("查询名下学生失败", zap.String("supervisor_id", supervisorID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.PersonBrief, 0, len(students))
	for i := range students {
		out = append(out, toStudentBrief(&students[i]))
	}
	return out, nil
}

// ────────────────────── 关联管理 ──────────────────────

func (s *userService) SetSupervisor(ctx context.Context, matric, supervisorEmail string) error {
	student, err := s.studentByMatric(ctx, matric)
	if err != nil {
		return err
	}
	sup, err := s.supervisorByEmail(ctx, supervisorEmail)
	if err != nil {
		return err
	}
	if err := s.repo.User.SetSupervisor(ctx, student.UserID, &sup.UserID); err != nil {
		return s.mapLinkErr(err)
	}
	s.logger.Info("已设置学生导师",
		zap.String("student_id", student.UserID),
		zap.String("supervisor_id", sup.UserID))
	return nil
}

func (s *userService) ClearSupervisor(ctx context.Context, matric string) error {
	student, err := s.studentByMatric(ctx, matric)
	if err != nil {
		return err
	}
	if err := s.repo.User.SetSupervisor(ctx, student.UserID, nil); err != nil {
		return s.mapLinkErr(err)
	}
	s.logger.Info("已清除学生导师", zap.String("student_id", student.UserID))
	return nil
}

func (s *userService) AssignStudents(ctx context.Context, supervisorEmail string, matrics []string) error {
	sup, ids, err := s.resolveBatch(ctx, supervisorEmail, matrics)
	if err != nil {
		return err
	}
	if err := s.repo.User.AssignStudents(ctx, sup.UserID, ids); err != nil {
		return s.mapLinkErr(err)
	}
	s.logger.Info("批量分配学生", zap.String("supervisor_id", sup.UserID), zap.Int("count", len(ids)))
	return nil
}

func (s *userService) UnassignStudents(ctx context.Context, supervisorEmail string, matrics []string) error {
	sup, ids, err := s.resolveBatch(ctx, supervisorEmail, matrics)
	if err != nil {
		return err
	}
	if err := s.repo.User.UnassignStudents(ctx, sup.UserID, ids); err != nil {
		return s.mapLinkErr(err)
	}
	s.logger.Info("批量解除学生", zap.String("supervisor_id", sup.UserID), zap.Int("count", len(ids)))
	return nil
}

func (s *userService) ReplaceStudents(ctx context.Context, supervisorEmail string, matrics []string) error {
	sup, ids, err := s.resolveBatch(ctx, supervisorEmail, matrics)
	if err != nil {
		return err
	}
	if err := s.repo.User.ReplaceStudents(ctx, sup.UserID, ids); err != nil {
		return s.mapLinkErr(err)
	}
	s.logger.Info("替换名下学生", zap.String("supervisor_id", sup.UserID), zap.Int("count", len(ids)))
	return nil
}

// ── 辅助函数 ──

func (s *userService) studentByMatric(ctx context.Context, matric string) (*model.User, error) {
	user, err := s.repo.User.GetByMatricNumber(ctx, strings.TrimSpace(matric))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsStudent() {
		return nil, ErrNotStudent
	}
	return user, nil
}

func (s *userService) supervisorByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupervisorNotFound
		}
		return nil, err
	}
	if !user.IsSupervisor() {
		return nil, ErrNotSupervisor
	}
	return user, nil
}

// resolveBatch 解析导师与学号列表，任一学号不存在则整批拒绝
func (s *userService) resolveBatch(ctx context.Context, supervisorEmail string, matrics []string) (*model.User, []string, error) {
	sup, err := s.supervisorByEmail(ctx, supervisorEmail)
	if err != nil {
		return nil, nil, err
	}

	wanted := make([]string, 0, len(matrics))
	seen := make(map[string]bool, len(matrics))
	for _, m := range matrics {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		wanted = append(wanted, m)
	}

	users, err := s.repo.User.ListByMatricNumbers(ctx, wanted)
	if err != nil {
		return nil, nil, err
	}
	found := make(map[string]string, len(users))
	for i := range users {
		if !users[i].IsStudent() {
			return nil, nil, ErrNotStudent
		}
		found[users[i].Matric()] = users[i].UserID
	}

	ids := make([]string, 0, len(wanted))
	var missing []string
	for _, m := range wanted {
		id, ok := found[m]
		if !ok {
			missing = append(missing, m)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.KindNotFound,
			fmt.Sprintf("unknown matric numbers: %s", strings.Join(missing, ", ")))
	}
	return sup, ids, nil
}

func (s *userService) mapLinkErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrNotStudent):
		return ErrNotStudent
	}
	s.logger.Error("更新导师关联失败", zap.Error(err))
	return err
}
