package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"siwes-logbook/config"
	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
	pkgerrors "siwes-logbook/pkg/errors"
)

// ── 日志模块业务错误 ──

var (
	ErrTextRequired        = pkgerrors.New(pkgerrors.KindValidation, "Please enter your daily log.")
	ErrSubmissionNotFound  = pkgerrors.New(pkgerrors.KindNotFound, "Submission not found.")
	ErrEditApproved        = pkgerrors.New(pkgerrors.KindPermission, "You cannot edit an approved submission.")
	ErrDeleteApproved      = pkgerrors.New(pkgerrors.KindPermission, "You cannot delete an approved submission.")
	ErrStudentOnly         = pkgerrors.New(pkgerrors.KindPermission, "You do not have permission to access the student dashboard.")
	ErrSupervisorOnly      = pkgerrors.New(pkgerrors.KindPermission, "You do not have permission to access the supervisor dashboard.")
	ErrInvalidRemarkTarget = pkgerrors.New(pkgerrors.KindValidation, "Invalid request")
)

// SubmissionService 日志生命周期与首页视图
//
// 规则：
//   - 学生只能编辑/删除本人未审批的日志，判断与写入在同一条 SQL 内完成
//   - 任意导师都可审批或备注任意日志，不校验导师与学生的关联
//   - 重复审批直接覆盖 reviewed_by
type SubmissionService interface {
	Create(ctx context.Context, studentID string, req *dto.CreateSubmissionRequest, file *multipart.FileHeader) (*dto.MutationResponse, error)
	Update(ctx context.Context, studentID, id string, req *dto.UpdateSubmissionRequest, file *multipart.FileHeader) (*dto.MutationResponse, error)
	Delete(ctx context.Context, studentID, id string) (*dto.MutationResponse, error)
	Approve(ctx context.Context, supervisorID, id string, req *dto.ApproveRequest) (*dto.MutationResponse, error)
	// SetRemark 覆盖备注（允许为空）并返回存储后的值
	SetRemark(ctx context.Context, supervisorID, id, remark string) (string, error)

	StudentDashboard(ctx context.Context, studentID string, q *dto.SubmissionQuery) (*dto.StudentDashboardResponse, error)
	SupervisorDashboard(ctx context.Context, supervisorID string, q *dto.SubmissionQuery) (*dto.SupervisorDashboardResponse, error)
}

type submissionService struct {
	cfg      *config.Config
	repo     *repository.Repository
	query    SubmissionQuery
	files    FileStore
	notices  NoticeService
	notifier Notifier
	logger   *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例，notifier 可为 nil
func NewSubmissionService(
	cfg *config.Config,
	repo *repository.Repository,
	query SubmissionQuery,
	files FileStore,
	notices NoticeService,
	notifier Notifier,
	logger *zap.Logger,
) SubmissionService {
	return &submissionService{
		cfg:      cfg,
		repo:     repo,
		query:    query,
		files:    files,
		notices:  notices,
		notifier: notifier,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *submissionService) Create(ctx context.Context, studentID string, req *dto.CreateSubmissionRequest, file *multipart.FileHeader) (*dto.MutationResponse, error) {
	student, err := s.loadRole(ctx, studentID, model.RoleStudent)
	if err != nil {
		return nil, s.fail(ctx, studentID, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, s.fail(ctx, studentID, ErrTextRequired)
	}

	sub := &model.Submission{
		StudentID:    student.UserID,
		MatricNumber: student.Matric(),
		Overview:     optionalString(req.Overview),
		Text:         req.Text,
		Date:         time.Now(),
	}

	if file != nil {
		rel, err := s.files.Save(file)
		if err != nil {
			return nil, s.fail(ctx, studentID, s.storageErr(err))
		}
		sub.FilePath = &rel
	}

	if err := s.repo.Submission.Create(ctx, sub); err != nil {
		s.discardFile(sub.FilePath)
		s.logger.Error("创建日志失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	sub.Student = student

	s.logger.Info("日志已提交", zap.String("submission_id", sub.SubmissionID), zap.String("student_id", studentID))
	resp := s.toResponse(sub)
	return &dto.MutationResponse{
		Submission: &resp,
		Notices:    s.notices.Inline(ctx, studentID, NoticeSuccess, "Submission successful!"),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *submissionService) Update(ctx context.Context, studentID, id string, req *dto.UpdateSubmissionRequest, file *multipart.FileHeader) (*dto.MutationResponse, error) {
	// 1. 预读：所有权 + 状态；同时取得旧附件路径
	current, err := s.ownedSubmission(ctx, studentID, id)
	if err != nil {
		return nil, s.fail(ctx, studentID, err)
	}
	if current.Approved {
		return nil, s.fail(ctx, studentID, ErrEditApproved)
	}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return nil, s.fail(ctx, studentID, ErrTextRequired)
	}

	upd := &repository.SubmissionUpdate{Text: req.Text, ClearFile: req.ClearFile}
	if req.Overview != nil {
		upd.SetOverview = true
		upd.Overview = optionalString(*req.Overview)
	}
	if file != nil {
		rel, err := s.files.Save(file)
		if err != nil {
			return nil, s.fail(ctx, studentID, s.storageErr(err))
		}
		upd.FilePath = &rel
	}

	// 2. 条件更新：WHERE 中再次校验所有权与未审批
	ok, err := s.repo.Submission.UpdatePending(ctx, id, studentID, upd)
	if err != nil {
		s.discardFile(upd.FilePath)
		s.logger.Error("更新日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}
	if !ok {
		s.discardFile(upd.FilePath)
		return nil, s.fail(ctx, studentID, s.classifyMiss(ctx, studentID, id, ErrEditApproved))
	}

	// 3. 旧附件在数据库更新成功后删除
	if (upd.FilePath != nil || upd.ClearFile) && current.FilePath != nil {
		s.discardFile(current.FilePath)
	}

	updated, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("日志已更新", zap.String("submission_id", id))
	resp := s.toResponse(updated)
	return &dto.MutationResponse{
		Submission: &resp,
		Notices:    s.notices.Inline(ctx, studentID, NoticeSuccess, "Submission updated successfully!"),
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *submissionService) Delete(ctx context.Context, studentID, id string) (*dto.MutationResponse, error) {
	current, err := s.ownedSubmission(ctx, studentID, id)
	if err != nil {
		return nil, s.fail(ctx, studentID, err)
	}
	if current.Approved {
		return nil, s.fail(ctx, studentID, ErrDeleteApproved)
	}

	ok, err := s.repo.Submission.DeletePending(ctx, id, studentID)
	if err != nil {
		s.logger.Error("删除日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, s.fail(ctx, studentID, s.classifyMiss(ctx, studentID, id, ErrDeleteApproved))
	}
	s.discardFile(current.FilePath)

	s.logger.Info("日志已删除", zap.String("submission_id", id))
	return &dto.MutationResponse{
		Notices: s.notices.Inline(ctx, studentID, NoticeSuccess, "Submission deleted successfully!"),
	}, nil
}

// ────────────────────── Approve / Remark ──────────────────────

func (s *submissionService) Approve(ctx context.Context, supervisorID, id string, req *dto.ApproveRequest) (*dto.MutationResponse, error) {
	var remark *string
	if req != nil && strings.TrimSpace(req.Remark) != "" {
		r := strings.TrimSpace(req.Remark)
		remark = &r
	}

	if !validID(id) {
		return nil, s.fail(ctx, supervisorID, ErrSubmissionNotFound)
	}
	if err := s.repo.Submission.Approve(ctx, id, supervisorID, remark); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.fail(ctx, supervisorID, ErrSubmissionNotFound)
		}
		s.logger.Error("审批日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}

	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("日志已审批", zap.String("submission_id", id), zap.String("supervisor_id", supervisorID))
	s.notifyApproved(sub)

	resp := s.toResponse(sub)
	msg := fmt.Sprintf("Submission %s approved!", id)
	return &dto.MutationResponse{
		Submission: &resp,
		Notices:    s.notices.Inline(ctx, supervisorID, NoticeSuccess, msg),
	}, nil
}

func (s *submissionService) SetRemark(ctx context.Context, supervisorID, id, remark string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrInvalidRemarkTarget
	}
	if !validID(id) {
		return "", ErrSubmissionNotFound
	}
	if err := s.repo.Submission.SetRemark(ctx, id, strings.TrimSpace(remark)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSubmissionNotFound
		}
		s.logger.Error("更新备注失败", zap.String("submission_id", id), zap.Error(err))
		return "", err
	}

	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSubmissionNotFound
		}
		return "", err
	}
	s.logger.Info("备注已更新", zap.String("submission_id", id), zap.String("supervisor_id", supervisorID))
	return sub.RemarkText(), nil
}

// ────────────────────── Dashboards ──────────────────────

func (s *submissionService) StudentDashboard(ctx context.Context, studentID string, q *dto.SubmissionQuery) (*dto.StudentDashboardResponse, error) {
	student, err := s.loadRole(ctx, studentID, model.RoleStudent)
	if err != nil {
		return nil, err
	}

	subs, err := s.query.ForStudent(ctx, studentID, q)
	if err != nil {
		s.logger.Error("查询学生日志失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := &dto.StudentDashboardResponse{
		Submissions: s.toResponses(subs),
		Notices:     s.notices.Pop(ctx, studentID),
	}
	if student.Supervisor != nil {
		resp.Supervisor = toSupervisorBrief(student.Supervisor)
	}
	return resp, nil
}

func (s *submissionService) SupervisorDashboard(ctx context.Context, supervisorID string, q *dto.SubmissionQuery) (*dto.SupervisorDashboardResponse, error) {
	if _, err := s.loadRole(ctx, supervisorID, model.RoleSupervisor); err != nil {
		return nil, err
	}

	students, err := s.repo.User.ListStudentsBySupervisor(ctx, supervisorID)
	if err != nil {
		s.logger.Error("查询名下学生失败", zap.String("supervisor_id", supervisorID), zap.Error(err))
		return nil, err
	}
	subs, err := s.query.ForSupervisor(ctx, supervisorID, q)
	if err != nil {
		s.logger.Error("查询名下日志失败", zap.String("supervisor_id", supervisorID), zap.Error(err))
		return nil, err
	}

	briefs := make([]dto.PersonBrief, 0, len(students))
	for i := range students {
		briefs = append(briefs, toStudentBrief(&students[i]))
	}
	return &dto.SupervisorDashboardResponse{
		Students:    briefs,
		Submissions: s.toResponses(subs),
		Notices:     s.notices.Pop(ctx, supervisorID),
	}, nil
}

// ── 辅助函数 ──

// loadRole 读取用户并校验角色
func (s *submissionService) loadRole(ctx context.Context, userID, role string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if user.Role != role {
		if role == model.RoleStudent {
			return nil, ErrStudentOnly
		}
		return nil, ErrSupervisorOnly
	}
	return user, nil
}

// validID 日志主键为 UUID，格式不合法的 id 直接视为不存在，不下发到数据库
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// ownedSubmission 不属于该学生的日志一律视为不存在
func (s *submissionService) ownedSubmission(ctx context.Context, studentID, id string) (*model.Submission, error) {
	if !validID(id) {
		return nil, ErrSubmissionNotFound
	}
	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询日志失败", zap.String("submission_id", id), zap.Error(err))
		return nil, err
	}
	if sub.StudentID != studentID {
		s.logger.Warn("拒绝访问他人日志", zap.String("submission_id", id), zap.String("student_id", studentID))
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// classifyMiss 条件写入未命中时重新读取以区分原因
func (s *submissionService) classifyMiss(ctx context.Context, studentID, id string, approvedErr error) error {
	sub, err := s.ownedSubmission(ctx, studentID, id)
	if err != nil {
		return err
	}
	if sub.Approved {
		return approvedErr
	}
	return pkgerrors.ErrOptimisticLock
}

// fail 业务拒绝写入提示消息，基础设施错误原样返回
func (s *submissionService) fail(ctx context.Context, userID string, err error) error {
	if pkgerrors.KindOf(err) != pkgerrors.KindUnknown {
		s.notices.Push(ctx, userID, NoticeError, err.Error())
	}
	return err
}

func (s *submissionService) storageErr(err error) error {
	if pkgerrors.KindOf(err) == pkgerrors.KindUnknown {
		s.logger.Error("保存附件失败", zap.Error(err))
	}
	return err
}

func (s *submissionService) discardFile(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	if err := s.files.Delete(*rel); err != nil {
		s.logger.Warn("删除附件失败", zap.String("path", *rel), zap.Error(err))
	}
}

// notifyApproved 审批通知邮件，失败只记日志
func (s *submissionService) notifyApproved(sub *model.Submission) {
	if s.notifier == nil || !s.notifier.Enabled() || sub.Student == nil || sub.Student.Email == "" {
		return
	}
	reviewer := "your supervisor"
	if sub.ReviewedBy != nil {
		reviewer = sub.ReviewedBy.TitledName()
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nYour log entry of %s was approved by %s.\n",
		sub.Student.DisplayName(),
		sub.Date.In(s.query.Location()).Format(dayLayout),
		reviewer,
	)
	if r := sub.RemarkText(); r != "" {
		body += "\nRemark: " + r + "\n"
	}
	if err := s.notifier.Send([]string{sub.Student.Email}, "SIWES log approved", body); err != nil {
		s.logger.Warn("发送审批通知失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
	}
}

func (s *submissionService) toResponses(subs []model.Submission) []dto.SubmissionResponse {
	out := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, s.toResponse(&subs[i]))
	}
	return out
}

func (s *submissionService) toResponse(sub *model.Submission) dto.SubmissionResponse {
	resp := dto.SubmissionResponse{
		ID:           sub.SubmissionID,
		MatricNumber: sub.MatricNumber,
		Overview:     sub.OverviewText(),
		Text:         sub.Text,
		FileURL:      s.files.URL(sub.File()),
		Date:         sub.Date.In(s.query.Location()).Format(time.RFC3339),
		Approved:     sub.Approved,
		Remark:       sub.RemarkText(),
	}
	if sub.Student != nil {
		resp.StudentName = sub.Student.DisplayName()
	}
	if sub.ReviewedBy != nil {
		resp.ReviewedBy = toSupervisorBrief(sub.ReviewedBy)
	}
	return resp
}
