package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"siwes-logbook/config"
	"siwes-logbook/internal/model"
	"siwes-logbook/internal/repository"
	"siwes-logbook/pkg/jwt"
)

// ── 测试辅助 ──

type testEnv struct {
	cfg      *config.Config
	users    *mockUserRepo
	subs     *mockSubmissionRepo
	files    *mockFileStore
	notices  *mockNoticeStore
	tokens   *mockTokenStore
	notifier *mockNotifier
	jwtMgr   *jwt.Manager
	svc      *Service
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://logbook.test"},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-0123456789",
			AccessTokenTTL: time.Hour,
		},
		App:    config.AppConfig{Timezone: "UTC"},
		Notice: config.NoticeConfig{TTL: time.Minute},
	}
	env := &testEnv{
		cfg:      cfg,
		users:    newMockUserRepo(),
		files:    &mockFileStore{},
		notices:  newMockNoticeStore(),
		tokens:   &mockTokenStore{},
		notifier: &mockNotifier{enabled: true},
		jwtMgr:   jwt.NewManager(&cfg.Auth),
	}
	env.subs = newMockSubmissionRepo(env.users)

	logger := zap.NewNop()
	repo := &repository.Repository{User: env.users, Submission: env.subs}
	noticeSvc := NewNoticeService(env.notices, cfg.Notice.TTL, logger)
	query := NewSubmissionQuery(repo, cfg.App.Location())
	env.svc = &Service{
		Auth:       NewAuthService(cfg, repo, env.jwtMgr, env.tokens, logger),
		User:       NewUserService(repo, logger),
		Query:      query,
		Submission: NewSubmissionService(cfg, repo, query, env.files, noticeSvc, env.notifier, logger),
		Export:     NewExportService(cfg, query, env.files, logger),
		Notice:     noticeSvc,
	}
	return env
}

func strPtr(s string) *string { return &s }

func (e *testEnv) student(id, matric, name string) *model.User {
	return e.users.add(&model.User{
		UserID:       id,
		Username:     id,
		Email:        id + "@uni.test",
		FullName:     name,
		Role:         model.RoleStudent,
		MatricNumber: strPtr(matric),
		IsActive:     true,
	})
}

func (e *testEnv) supervisor(id, name string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return e.users.add(&model.User{
		UserID:       id,
		Username:     id,
		Email:        id + "@uni.test",
		FullName:     name,
		PasswordHash: string(hash),
		Role:         model.RoleSupervisor,
		Title:        strPtr("Dr"),
		IsActive:     true,
	})
}

func (e *testEnv) link(student, supervisor *model.User) {
	id := supervisor.UserID
	student.SupervisorID = &id
}

// seedSubmission 直接写入一条日志
func (e *testEnv) seedSubmission(student *model.User, date time.Time) *model.Submission {
	sub := &model.Submission{
		StudentID:    student.UserID,
		MatricNumber: student.Matric(),
		Text:         "log " + date.Format(time.RFC3339),
		Date:         date,
	}
	_ = e.subs.Create(context.Background(), sub)
	return e.subs.subs[sub.SubmissionID]
}
