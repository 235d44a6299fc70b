package service

import (
	"context"
	"strings"
	"time"

	"siwes-logbook/internal/dto"
	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
)

// 状态筛选取值
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
)

const dayLayout = "2006-01-02"

// SubmissionQuery 日志查询管线
// 首页展示与全部导出共用同一入口，保证导出集合与展示一致
type SubmissionQuery interface {
	ForStudent(ctx context.Context, studentID string, q *dto.SubmissionQuery) ([]model.Submission, error)
	ForSupervisor(ctx context.Context, supervisorID string, q *dto.SubmissionQuery) ([]model.Submission, error)
	// Location 解析日期参数所用时区
	Location() *time.Location
}

type submissionQuery struct {
	repo *repository.Repository
	loc  *time.Location
}

// NewSubmissionQuery 创建查询管线
func NewSubmissionQuery(repo *repository.Repository, loc *time.Location) SubmissionQuery {
	if loc == nil {
		loc = time.UTC
	}
	return &submissionQuery{repo: repo, loc: loc}
}

func (s *submissionQuery) Location() *time.Location { return s.loc }

func (s *submissionQuery) ForStudent(ctx context.Context, studentID string, q *dto.SubmissionQuery) ([]model.Submission, error) {
	f := BuildFilter(q, s.loc)
	f.StudentID = studentID
	return s.repo.Submission.Query(ctx, &f)
}

func (s *submissionQuery) ForSupervisor(ctx context.Context, supervisorID string, q *dto.SubmissionQuery) ([]model.Submission, error) {
	f := BuildFilter(q, s.loc)
	f.SupervisorID = supervisorID
	return s.repo.Submission.Query(ctx, &f)
}

// BuildFilter 将查询参数转换为筛选条件（不含可见范围）
//
//   - start_date 为起始日 00:00（含）
//   - end_date 为次日 00:00（不含），即包含结束当天
//   - filter_date 等价于 start_date = end_date = 该日，与区间同时出现时取交集
//   - 无法解析的日期、未知的 status 直接忽略
func BuildFilter(q *dto.SubmissionQuery, loc *time.Location) repository.SubmissionFilter {
	var f repository.SubmissionFilter
	if q == nil {
		return f
	}

	f.MatricNumber = strings.TrimSpace(q.Student)

	if day, ok := parseDay(q.StartDate, loc); ok {
		f.From = &day
	}
	if day, ok := parseDay(q.EndDate, loc); ok {
		next := day.AddDate(0, 0, 1)
		f.Before = &next
	}
	if day, ok := parseDay(q.FilterDate, loc); ok {
		next := day.AddDate(0, 0, 1)
		if f.From == nil || day.After(*f.From) {
			f.From = &day
		}
		if f.Before == nil || next.Before(*f.Before) {
			f.Before = &next
		}
	}

	switch strings.ToLower(strings.TrimSpace(q.Status)) {
	case StatusApproved:
		v := true
		f.Approved = &v
	case StatusPending:
		v := false
		f.Approved = &v
	}
	return f
}

func parseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
