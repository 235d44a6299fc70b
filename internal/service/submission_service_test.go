package service

import (
	"context"
	"errors"
	"mime/multipart"
	"reflect"
	"testing"
	"time"

	"siwes-logbook/internal/dto"
	pkgerrors "siwes-logbook/pkg/errors"
)

// ── Create 测试 ──

func TestSubmissionService_Create_WithoutOverview(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	resp, err := env.svc.Submission.Create(context.Background(), a.UserID, &dto.CreateSubmissionRequest{Text: "Worked on X"}, nil)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(env.subs.subs) != 1 {
		t.Fatalf("期望 1 条日志，实际 %d", len(env.subs.subs))
	}
	stored := env.subs.subs[resp.Submission.ID]
	if stored.Approved {
		t.Error("期望 approved=false")
	}
	if stored.ReviewedByID != nil {
		t.Error("期望 reviewed_by 为空")
	}
	if stored.MatricNumber != "CSC/001" {
		t.Errorf("期望学号快照 CSC/001，实际 %s", stored.MatricNumber)
	}
	if stored.Overview != nil {
		t.Error("期望 overview 为空")
	}
	// 提示已写入存储，由下一次视图返回，响应中不重复携带
	if len(resp.Notices) != 0 {
		t.Errorf("期望响应不携带已存储的提示，实际 %+v", resp.Notices)
	}
	if n := env.notices.items[a.UserID]; len(n) != 1 || n[0].Level != NoticeSuccess {
		t.Errorf("期望存储一条成功提示，实际 %+v", n)
	}
}

func TestSubmissionService_Create_MatricSnapshot(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	resp, err := env.svc.Submission.Create(context.Background(), a.UserID, &dto.CreateSubmissionRequest{Text: "day one"}, nil)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 学生后续修改学号，历史日志不受影响
	a.MatricNumber = strPtr("CSC/999")
	if got := env.subs.subs[resp.Submission.ID].MatricNumber; got != "CSC/001" {
		t.Errorf("期望快照保持 CSC/001，实际 %s", got)
	}
}

func TestSubmissionService_Create_EmptyText(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	_, err := env.svc.Submission.Create(context.Background(), a.UserID, &dto.CreateSubmissionRequest{Overview: "x", Text: "   "}, nil)
	if !errors.Is(err, ErrTextRequired) {
		t.Fatalf("期望 ErrTextRequired，实际 %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Error("期望归类为 ValidationError")
	}
	if len(env.subs.subs) != 0 {
		t.Error("期望未创建任何日志")
	}
	// 失败提示留给下一次视图
	if n := env.notices.items[a.UserID]; len(n) != 1 || n[0].Level != NoticeError {
		t.Errorf("期望一条错误提示，实际 %+v", n)
	}
}

func TestSubmissionService_Create_SupervisorRejected(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")

	_, err := env.svc.Submission.Create(context.Background(), s.UserID, &dto.CreateSubmissionRequest{Text: "x"}, nil)
	if !errors.Is(err, ErrStudentOnly) {
		t.Fatalf("期望 ErrStudentOnly，实际 %v", err)
	}
}

func TestSubmissionService_Create_WithFile(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	resp, err := env.svc.Submission.Create(context.Background(), a.UserID,
		&dto.CreateSubmissionRequest{Overview: "Setup", Text: "Installed tools"},
		&multipart.FileHeader{Filename: "notes.pdf"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Submission.FileURL != "/media/submissions/file-1-notes.pdf" {
		t.Errorf("附件地址不符: %s", resp.Submission.FileURL)
	}
	if resp.Submission.Overview != "Setup" {
		t.Errorf("期望 overview=Setup，实际 %s", resp.Submission.Overview)
	}
}

func TestSubmissionService_Create_StorageRejected(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	env.files.saveErr = pkgerrors.New(pkgerrors.KindValidation, "attachment type is not allowed")

	_, err := env.svc.Submission.Create(context.Background(), a.UserID,
		&dto.CreateSubmissionRequest{Text: "x"}, &multipart.FileHeader{Filename: "virus.exe"})
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
	if len(env.subs.subs) != 0 {
		t.Error("期望未创建日志")
	}
}

// ── Update 测试 ──

func TestSubmissionService_Update_Success(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	sub := env.seedSubmission(a, time.Now())
	sub.Overview = strPtr("old overview")
	sub.FilePath = strPtr("submissions/old.pdf")

	resp, err := env.svc.Submission.Update(context.Background(), a.UserID, sub.SubmissionID,
		&dto.UpdateSubmissionRequest{Overview: strPtr(""), Text: strPtr("rewritten")},
		&multipart.FileHeader{Filename: "new.pdf"})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	stored := env.subs.subs[sub.SubmissionID]
	if stored.Text != "rewritten" {
		t.Errorf("期望正文已更新，实际 %s", stored.Text)
	}
	if stored.Overview != nil {
		t.Error("期望空 overview 被清除")
	}
	if stored.File() != "submissions/file-1-new.pdf" {
		t.Errorf("期望附件已替换，实际 %s", stored.File())
	}
	if len(env.files.deleted) != 1 || env.files.deleted[0] != "submissions/old.pdf" {
		t.Errorf("期望删除旧附件，实际 %v", env.files.deleted)
	}
	if n := env.notices.items[a.UserID]; len(n) != 1 || n[0].Message != "Submission updated successfully!" {
		t.Errorf("提示不符: %+v", n)
	}
	if len(resp.Notices) != 0 {
		t.Errorf("期望响应不重复携带提示，实际 %+v", resp.Notices)
	}
}

func TestSubmissionService_Update_KeepsOmittedFields(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	sub := env.seedSubmission(a, time.Now())
	sub.Overview = strPtr("keep me")
	original := sub.Text

	_, err := env.svc.Submission.Update(context.Background(), a.UserID, sub.SubmissionID, &dto.UpdateSubmissionRequest{}, nil)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if sub.Text != original || sub.OverviewText() != "keep me" {
		t.Error("期望未提交的字段保持不变")
	}
}

func TestSubmissionService_Update_ApprovedUnchanged(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	sub := env.seedSubmission(a, time.Now())
	_ = env.subs.Approve(context.Background(), sub.SubmissionID, s.UserID, strPtr("ok"))
	before := *env.subs.subs[sub.SubmissionID]

	_, err := env.svc.Submission.Update(context.Background(), a.UserID, sub.SubmissionID,
		&dto.UpdateSubmissionRequest{Text: strPtr("sneaky edit")}, &multipart.FileHeader{Filename: "x.pdf"})
	if !errors.Is(err, ErrEditApproved) {
		t.Fatalf("期望 ErrEditApproved，实际 %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrPermission) {
		t.Error("期望归类为 PermissionError")
	}
	if !reflect.DeepEqual(before, *env.subs.subs[sub.SubmissionID]) {
		t.Error("期望已审批日志保持不变")
	}
	if len(env.files.saved) != 0 {
		t.Error("期望拒绝时不保存附件")
	}
}

func TestSubmissionService_Update_NotOwner(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	b := env.student("stu-b", "CSC/002", "Bola Ade")
	sub := env.seedSubmission(a, time.Now())

	_, err := env.svc.Submission.Update(context.Background(), b.UserID, sub.SubmissionID,
		&dto.UpdateSubmissionRequest{Text: strPtr("hijack")}, nil)
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("期望 ErrSubmissionNotFound，实际 %v", err)
	}
}

func TestSubmissionService_Update_EmptyText(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	sub := env.seedSubmission(a, time.Now())

	_, err := env.svc.Submission.Update(context.Background(), a.UserID, sub.SubmissionID,
		&dto.UpdateSubmissionRequest{Text: strPtr("")}, nil)
	if !errors.Is(err, ErrTextRequired) {
		t.Fatalf("期望 ErrTextRequired，实际 %v", err)
	}
}

// ── Delete 测试 ──

func TestSubmissionService_Delete_Success(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	sub := env.seedSubmission(a, time.Now())
	sub.FilePath = strPtr("submissions/a.pdf")

	if _, err := env.svc.Submission.Delete(context.Background(), a.UserID, sub.SubmissionID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := env.subs.subs[sub.SubmissionID]; ok {
		t.Error("期望日志已删除")
	}
	if len(env.files.deleted) != 1 {
		t.Error("期望同时删除附件")
	}
}

func TestSubmissionService_Delete_ApprovedUnchanged(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	sub := env.seedSubmission(a, time.Now())
	_ = env.subs.Approve(context.Background(), sub.SubmissionID, s.UserID, nil)
	before := *env.subs.subs[sub.SubmissionID]

	_, err := env.svc.Submission.Delete(context.Background(), a.UserID, sub.SubmissionID)
	if !errors.Is(err, ErrDeleteApproved) {
		t.Fatalf("期望 ErrDeleteApproved，实际 %v", err)
	}
	after, ok := env.subs.subs[sub.SubmissionID]
	if !ok || !reflect.DeepEqual(before, *after) {
		t.Error("期望已审批日志保持不变")
	}
}

func TestSubmissionService_Delete_Missing(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	_, err := env.svc.Submission.Delete(context.Background(), a.UserID, "nope")
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("期望 ErrSubmissionNotFound，实际 %v", err)
	}
}

// ── Approve / Remark 测试 ──

func TestSubmissionService_Approve_ByUnassignedSupervisor(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	own := env.supervisor("sup-own", "Own Sup")
	other := env.supervisor("sup-other", "Other Sup")
	env.link(a, own)
	sub := env.seedSubmission(a, time.Now())

	resp, err := env.svc.Submission.Approve(context.Background(), other.UserID, sub.SubmissionID, &dto.ApproveRequest{})
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	stored := env.subs.subs[sub.SubmissionID]
	if !stored.Approved || stored.ReviewedByID == nil || *stored.ReviewedByID != other.UserID {
		t.Errorf("期望由 sup-other 审批，实际 %+v", stored)
	}
	if resp.Submission.ReviewedBy == nil || resp.Submission.ReviewedBy.Name != "Dr Other Sup" {
		t.Errorf("响应中的审批人不符: %+v", resp.Submission.ReviewedBy)
	}
	if len(env.notifier.sent) != 1 || env.notifier.sent[0] != a.Email {
		t.Errorf("期望通知学生邮箱，实际 %v", env.notifier.sent)
	}
}

func TestSubmissionService_Approve_EmptyRemarkKeepsExisting(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	sub := env.seedSubmission(a, time.Now())
	sub.Remark = strPtr("earlier note")

	if _, err := env.svc.Submission.Approve(context.Background(), s.UserID, sub.SubmissionID, &dto.ApproveRequest{Remark: "  "}); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if got := env.subs.subs[sub.SubmissionID].RemarkText(); got != "earlier note" {
		t.Errorf("期望保留原备注，实际 %q", got)
	}

	if _, err := env.svc.Submission.Approve(context.Background(), s.UserID, sub.SubmissionID, &dto.ApproveRequest{Remark: "well done"}); err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if got := env.subs.subs[sub.SubmissionID].RemarkText(); got != "well done" {
		t.Errorf("期望备注被覆盖，实际 %q", got)
	}
}

func TestSubmissionService_Approve_ReapproveOverwritesReviewer(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s1 := env.supervisor("sup-1", "First")
	s2 := env.supervisor("sup-2", "Second")
	sub := env.seedSubmission(a, time.Now())

	_, _ = env.svc.Submission.Approve(context.Background(), s1.UserID, sub.SubmissionID, nil)
	if _, err := env.svc.Submission.Approve(context.Background(), s2.UserID, sub.SubmissionID, nil); err != nil {
		t.Fatalf("重复审批应成功: %v", err)
	}
	if got := *env.subs.subs[sub.SubmissionID].ReviewedByID; got != s2.UserID {
		t.Errorf("期望 reviewed_by=sup-2，实际 %s", got)
	}
}

func TestSubmissionService_Approve_NotFound(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")

	_, err := env.svc.Submission.Approve(context.Background(), s.UserID, "missing", nil)
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("期望 ErrSubmissionNotFound，实际 %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Error("期望归类为 NotFoundError")
	}
}

func TestSubmissionService_Approve_MailFailureIgnored(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	sub := env.seedSubmission(a, time.Now())
	env.notifier.sendErr = errors.New("smtp down")

	if _, err := env.svc.Submission.Approve(context.Background(), s.UserID, sub.SubmissionID, nil); err != nil {
		t.Fatalf("邮件失败不应影响审批: %v", err)
	}
}

func TestSubmissionService_SetRemark(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	sub := env.seedSubmission(a, time.Now())
	_ = env.subs.Approve(context.Background(), sub.SubmissionID, s.UserID, strPtr("first"))

	got, err := env.svc.Submission.SetRemark(context.Background(), s.UserID, sub.SubmissionID, "  revised  ")
	if err != nil {
		t.Fatalf("SetRemark 应成功: %v", err)
	}
	if got != "revised" {
		t.Errorf("期望返回 revised，实际 %q", got)
	}

	got, err = env.svc.Submission.SetRemark(context.Background(), s.UserID, sub.SubmissionID, "")
	if err != nil || got != "" {
		t.Fatalf("期望允许清空备注，实际 %q, %v", got, err)
	}
	if !env.subs.subs[sub.SubmissionID].Approved {
		t.Error("备注修改不应影响审批状态")
	}
}

func TestSubmissionService_SetRemark_NotFound(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")

	_, err := env.svc.Submission.SetRemark(context.Background(), s.UserID, "missing", "x")
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("期望 ErrSubmissionNotFound，实际 %v", err)
	}
}

// ── Dashboard 测试 ──

func TestSubmissionService_SupervisorDashboard_PendingFilter(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	env.link(a, s)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, env.seedSubmission(a, base.Add(time.Duration(i)*time.Hour)).SubmissionID)
	}
	for _, id := range ids[:2] {
		if _, err := env.svc.Submission.Approve(context.Background(), s.UserID, id, nil); err != nil {
			t.Fatalf("Approve 失败: %v", err)
		}
	}

	resp, err := env.svc.Submission.SupervisorDashboard(context.Background(), s.UserID, &dto.SubmissionQuery{Status: "pending"})
	if err != nil {
		t.Fatalf("SupervisorDashboard 应成功: %v", err)
	}
	if len(resp.Submissions) != 3 {
		t.Fatalf("期望 3 条待审批日志，实际 %d", len(resp.Submissions))
	}
	want := []string{ids[4], ids[3], ids[2]}
	for i, sub := range resp.Submissions {
		if sub.ID != want[i] {
			t.Errorf("第 %d 条期望 %s，实际 %s", i, want[i], sub.ID)
		}
	}
	if len(resp.Students) != 1 || resp.Students[0].MatricNumber != "CSC/001" {
		t.Errorf("期望名下学生列表包含 CSC/001，实际 %+v", resp.Students)
	}
	// 两次审批的提示在本次视图中返回并清除
	if len(resp.Notices) != 2 {
		t.Errorf("期望 2 条提示，实际 %d", len(resp.Notices))
	}
	if len(env.notices.items[s.UserID]) != 0 {
		t.Error("期望提示读取后清除")
	}
}

func TestSubmissionService_SupervisorDashboard_ExcludesOtherStudents(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	b := env.student("stu-b", "CSC/002", "Bola Ade")
	env.link(a, s)
	env.seedSubmission(a, time.Now())
	env.seedSubmission(b, time.Now())

	resp, err := env.svc.Submission.SupervisorDashboard(context.Background(), s.UserID, nil)
	if err != nil {
		t.Fatalf("SupervisorDashboard 应成功: %v", err)
	}
	if len(resp.Submissions) != 1 || resp.Submissions[0].MatricNumber != "CSC/001" {
		t.Errorf("期望仅返回名下学生日志，实际 %+v", resp.Submissions)
	}
}

func TestSubmissionService_StudentDashboard(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	b := env.student("stu-b", "CSC/002", "Bola Ade")
	env.link(a, s)
	env.seedSubmission(a, time.Now())
	env.seedSubmission(b, time.Now())

	resp, err := env.svc.Submission.StudentDashboard(context.Background(), a.UserID, &dto.SubmissionQuery{})
	if err != nil {
		t.Fatalf("StudentDashboard 应成功: %v", err)
	}
	if len(resp.Submissions) != 1 {
		t.Errorf("期望仅返回本人日志，实际 %d", len(resp.Submissions))
	}
	if resp.Supervisor == nil || resp.Supervisor.Name != "Dr Ben Eze" {
		t.Errorf("期望返回导师信息，实际 %+v", resp.Supervisor)
	}
	if resp.Notices == nil {
		t.Error("期望 notices 为空数组而不是 nil")
	}
}

func TestSubmissionService_StudentDashboard_WrongRole(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")

	_, err := env.svc.Submission.StudentDashboard(context.Background(), s.UserID, nil)
	if !errors.Is(err, ErrStudentOnly) {
		t.Fatalf("期望 ErrStudentOnly，实际 %v", err)
	}
}

// ── 不变量：approved 为 true 时 reviewed_by 不为空 ──

func TestSubmissionService_ApprovedImpliesReviewer(t *testing.T) {
	env := newTestEnv()
	s := env.supervisor("sup-1", "Ben Eze")
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		resp, err := env.svc.Submission.Create(ctx, a.UserID, &dto.CreateSubmissionRequest{Text: "entry"}, nil)
		if err != nil {
			t.Fatalf("Create 失败: %v", err)
		}
		if i%2 == 0 {
			_, _ = env.svc.Submission.Approve(ctx, s.UserID, resp.Submission.ID, nil)
		}
		_, _ = env.svc.Submission.SetRemark(ctx, s.UserID, resp.Submission.ID, "note")
	}

	for id, sub := range env.subs.subs {
		if sub.Approved && sub.ReviewedByID == nil {
			t.Errorf("日志 %s 已审批但 reviewed_by 为空", id)
		}
	}
}

// ── 提示投递 ──

func TestSubmissionService_NoticeDeliveredOnce(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")

	resp, err := env.svc.Submission.Create(context.Background(), a.UserID, &dto.CreateSubmissionRequest{Text: "day one"}, nil)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	dash, err := env.svc.Submission.StudentDashboard(context.Background(), a.UserID, &dto.SubmissionQuery{})
	if err != nil {
		t.Fatalf("StudentDashboard 应成功: %v", err)
	}

	total := len(resp.Notices) + len(dash.Notices)
	if total != 1 {
		t.Errorf("期望提示只出现一次，响应 %d 条，视图 %d 条", len(resp.Notices), len(dash.Notices))
	}
}

func TestSubmissionService_NoticeInlineWhenStoreFails(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	env.notices.pushErr = errors.New("redis down")

	resp, err := env.svc.Submission.Create(context.Background(), a.UserID, &dto.CreateSubmissionRequest{Text: "day one"}, nil)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Message != "Submission successful!" {
		t.Errorf("存储不可用时期望提示随响应返回，实际 %+v", resp.Notices)
	}
}

// ── 非法 id ──

func TestSubmissionService_MalformedID(t *testing.T) {
	env := newTestEnv()
	a := env.student("stu-a", "CSC/001", "Ada Obi")
	s := env.supervisor("sup-1", "Ben Eze")
	env.seedSubmission(a, time.Now())
	ctx := context.Background()
	text := "x"

	cases := map[string]func() error{
		"update": func() error {
			_, err := env.svc.Submission.Update(ctx, a.UserID, "not-a-uuid", &dto.UpdateSubmissionRequest{Text: &text}, nil)
			return err
		},
		"delete": func() error {
			_, err := env.svc.Submission.Delete(ctx, a.UserID, "not-a-uuid")
			return err
		},
		"approve": func() error {
			_, err := env.svc.Submission.Approve(ctx, s.UserID, "not-a-uuid", &dto.ApproveRequest{})
			return err
		},
		"remark": func() error {
			_, err := env.svc.Submission.SetRemark(ctx, s.UserID, "not-a-uuid", "x")
			return err
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			err := call()
			if !errors.Is(err, ErrSubmissionNotFound) {
				t.Fatalf("期望 ErrSubmissionNotFound，实际 %v", err)
			}
			if errors.Is(err, errUUIDSyntax) {
				t.Error("非法 id 不应下发到存储层")
			}
		})
	}
}
