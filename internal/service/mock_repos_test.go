package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
	"siwes-logbook/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
	// createErrs 依次返回给 Create 的错误（用于模拟唯一索引冲突）
	createErrs []error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.UserID == "" {
		m.seq++
		u.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email ||
			(user.MatricNumber != nil && u.Matric() == *user.MatricNumber) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	if u.SupervisorID != nil {
		cp.Supervisor = m.users[*u.SupervisorID]
	}
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByMatricNumber(_ context.Context, matric string) (*model.User, error) {
	for _, u := range m.users {
		if u.MatricNumber != nil && *u.MatricNumber == matric {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByMatricNumbers(_ context.Context, matrics []string) ([]model.User, error) {
	want := make(map[string]bool, len(matrics))
	for _, s := range matrics {
		want[s] = true
	}
	var out []model.User
	for _, u := range m.users {
		if u.MatricNumber != nil && want[*u.MatricNumber] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListUsernamesWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, u := range m.users {
		if strings.HasPrefix(u.Username, prefix) {
			out = append(out, u.Username)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListStudentsBySupervisor(_ context.Context, supervisorID string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.IsStudent() && u.SupervisorID != nil && *u.SupervisorID == supervisorID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matric() < out[j].Matric() })
	return out, nil
}

func (m *mockUserRepo) SetSupervisor(_ context.Context, studentID string, supervisorID *string) error {
	u, ok := m.users[studentID]
	if !ok || !u.IsStudent() {
		return gorm.ErrRecordNotFound
	}
	u.SupervisorID = supervisorID
	return nil
}

func (m *mockUserRepo) AssignStudents(_ context.Context, supervisorID string, studentIDs []string) error {
	for _, id := range studentIDs {
		if u, ok := m.users[id]; !ok || !u.IsStudent() {
			return repository.ErrNotStudent
		}
	}
	for _, id := range studentIDs {
		sid := supervisorID
		m.users[id].SupervisorID = &sid
	}
	return nil
}

func (m *mockUserRepo) UnassignStudents(_ context.Context, supervisorID string, studentIDs []string) error {
	for _, id := range studentIDs {
		if u, ok := m.users[id]; ok && u.SupervisorID != nil && *u.SupervisorID == supervisorID {
			u.SupervisorID = nil
		}
	}
	return nil
}

func (m *mockUserRepo) ReplaceStudents(ctx context.Context, supervisorID string, studentIDs []string) error {
	keep := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		keep[id] = true
	}
	for _, u := range m.users {
		if u.SupervisorID != nil && *u.SupervisorID == supervisorID && !keep[u.UserID] {
			u.SupervisorID = nil
		}
	}
	return m.AssignStudents(ctx, supervisorID, studentIDs)
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs  map[string]*model.Submission
	users *mockUserRepo
	seq   int
	// queryErr 非 nil 时 Query 返回该错误
	queryErr error
}

func newMockSubmissionRepo(users *mockUserRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.Submission), users: users}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	if sub.SubmissionID == "" {
		m.seq++
		// UUID 格式且按创建顺序递增
		sub.SubmissionID = fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
	}
	cp := *sub
	cp.Student, cp.ReviewedBy = nil, nil
	m.subs[sub.SubmissionID] = &cp
	return nil
}

func (m *mockSubmissionRepo) hydrate(s *model.Submission) model.Submission {
	cp := *s
	cp.Student = m.users.users[s.StudentID]
	if s.ReviewedByID != nil {
		cp.ReviewedBy = m.users.users[*s.ReviewedByID]
	}
	return cp
}

// errUUIDSyntax 模拟 PostgreSQL 对 uuid 列传入非法值时的 22P02 错误
var errUUIDSyntax = errors.New(`ERROR: invalid input syntax for type uuid (SQLSTATE 22P02)`)

func (m *mockSubmissionRepo) checkID(id string) error {
	if uuid.Validate(id) != nil {
		return errUUIDSyntax
	}
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if err := m.checkID(id); err != nil {
		return nil, err
	}
	s, ok := m.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.hydrate(s)
	return &cp, nil
}

func (m *mockSubmissionRepo) UpdatePending(_ context.Context, id, studentID string, upd *repository.SubmissionUpdate) (bool, error) {
	if err := m.checkID(id); err != nil {
		return false, err
	}
	s, ok := m.subs[id]
	if !ok || s.StudentID != studentID || s.Approved {
		return false, nil
	}
	if upd.Text != nil {
		s.Text = *upd.Text
	}
	if upd.SetOverview {
		s.Overview = upd.Overview
	}
	switch {
	case upd.FilePath != nil:
		p := *upd.FilePath
		s.FilePath = &p
	case upd.ClearFile:
		s.FilePath = nil
	}
	return true, nil
}

func (m *mockSubmissionRepo) DeletePending(_ context.Context, id, studentID string) (bool, error) {
	if err := m.checkID(id); err != nil {
		return false, err
	}
	s, ok := m.subs[id]
	if !ok || s.StudentID != studentID || s.Approved {
		return false, nil
	}
	delete(m.subs, id)
	return true, nil
}

func (m *mockSubmissionRepo) Approve(_ context.Context, id, reviewerID string, remark *string) error {
	if err := m.checkID(id); err != nil {
		return err
	}
	s, ok := m.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rid := reviewerID
	s.Approved = true
	s.ReviewedByID = &rid
	if remark != nil {
		r := *remark
		s.Remark = &r
	}
	return nil
}

func (m *mockSubmissionRepo) SetRemark(_ context.Context, id, remark string) error {
	if err := m.checkID(id); err != nil {
		return err
	}
	s, ok := m.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Remark = &remark
	return nil
}

func (m *mockSubmissionRepo) Query(_ context.Context, f *repository.SubmissionFilter) ([]model.Submission, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []model.Submission
	for _, s := range m.subs {
		if f.StudentID != "" && s.StudentID != f.StudentID {
			continue
		}
		if f.SupervisorID != "" {
			st, ok := m.users.users[s.StudentID]
			if !ok || st.SupervisorID == nil || *st.SupervisorID != f.SupervisorID {
				continue
			}
		}
		if f.MatricNumber != "" && s.MatricNumber != f.MatricNumber {
			continue
		}
		if f.From != nil && s.Date.Before(*f.From) {
			continue
		}
		if f.Before != nil && !s.Date.Before(*f.Before) {
			continue
		}
		if f.Approved != nil && s.Approved != *f.Approved {
			continue
		}
		out = append(out, m.hydrate(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].SubmissionID > out[j].SubmissionID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// ── Mock 基础设施 ──

type mockFileStore struct {
	saved   []string
	deleted []string
	saveErr error
}

func (m *mockFileStore) Save(fh *multipart.FileHeader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	rel := fmt.Sprintf("submissions/file-%d-%s", len(m.saved)+1, fh.Filename)
	m.saved = append(m.saved, rel)
	return rel, nil
}

func (m *mockFileStore) Delete(rel string) error {
	m.deleted = append(m.deleted, rel)
	return nil
}

func (m *mockFileStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + rel
}

func (m *mockFileStore) AbsoluteURL(baseURL, rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + m.URL(rel)
}

type mockNoticeStore struct {
	items map[string][]redis.Notice
	// pushErr 非 nil 时 PushNotice 返回该错误
	pushErr error
}

func newMockNoticeStore() *mockNoticeStore {
	return &mockNoticeStore{items: make(map[string][]redis.Notice)}
}

func (m *mockNoticeStore) PushNotice(_ context.Context, userID string, n redis.Notice, _ time.Duration) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	m.items[userID] = append(m.items[userID], n)
	return nil
}

func (m *mockNoticeStore) PopNotices(_ context.Context, userID string) ([]redis.Notice, error) {
	out := m.items[userID]
	delete(m.items, userID)
	return out, nil
}

type mockTokenStore struct {
	blacklisted map[string]time.Duration
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.blacklisted == nil {
		m.blacklisted = make(map[string]time.Duration)
	}
	m.blacklisted[jti] = ttl
	return nil
}

type mockNotifier struct {
	enabled bool
	sent    []string // 收件人
	sendErr error
}

func (m *mockNotifier) Enabled() bool { return m.enabled }

func (m *mockNotifier) Send(to []string, _ string, _ string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, to...)
	return nil
}
