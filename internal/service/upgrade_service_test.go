package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestUpgradeService(students ...model.Student) (UpgradeService, *testRepos) {
	r := newTestRepos()
	r.students = newMockStudentRepo(students...)
	r.repo.Student = r.students
	r.courses = newMockCourseRepo(model.Course{ID: "c1", Name: "BCA", TotalSemesters: 6})
	r.repo.Course = r.courses
	svc := NewUpgradeService(r.repo, testFeeConfig(), newTestBatchRunner(r), fixedClock, zap.NewNop())
	return svc, r
}

func paidUp(s model.Student) model.Student {
	s.PaidFees = s.TotalFees
	s.PendingFees = 0
	return s
}

// ── UpgradeStudents 测试 ──

func TestUpgradeService_UpgradeStudents_PartialFailure(t *testing.T) {
	svc, r := setupTestUpgradeService(
		studentWithPlan("1", 1, "2025-07-15"),
		studentWithPlan("2", 1, "2025-07-15"),
		studentWithPlan("3", 1, "2025-07-15"),
	)
	r.students.updateErr["2"] = errUpstream

	res, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{StudentIDs: []string{"1", "2", "3"}}, "admin-1")
	if err != nil {
		t.Fatalf("UpgradeStudents 不应返回错误: %v", err)
	}

	if res.Success {
		t.Error("存在失败单项时整体 success 应为 false")
	}
	if res.Succeeded != 2 || res.Failed != 1 || res.Total != 3 {
		t.Errorf("期望 2 成功 1 失败，实际 %d/%d/%d", res.Succeeded, res.Failed, res.Total)
	}
	if res.Items[1].ID != "2" || res.Items[1].Success || res.Items[1].Error == "" {
		t.Errorf("第2项应失败并带错误信息: %+v", res.Items[1])
	}

	if got := r.students.get("1").Semester; got != 2 {
		t.Errorf("学生1应升至第2学期，实际=%d", got)
	}
	if got := r.students.get("2").Semester; got != 1 {
		t.Errorf("学生2应保持第1学期，实际=%d", got)
	}
	if got := r.students.get("3").Semester; got != 2 {
		t.Errorf("学生3应升至第2学期，实际=%d", got)
	}

	if len(r.batches.ops) != 1 {
		t.Fatalf("期望写入1条审计记录，实际=%d", len(r.batches.ops))
	}
	op := r.batches.ops[0]
	if op.Kind != model.BatchKindSemesterUpgrade || op.OperatorID != "admin-1" || op.Failed != 1 || len(op.Items) != 3 {
		t.Errorf("审计记录不符: %+v", op)
	}
	if res.BatchID != op.BatchID {
		t.Errorf("返回的 batch_id 应与审计记录一致")
	}
}

func TestUpgradeService_UpgradeStudents_AllSucceed(t *testing.T) {
	svc, r := setupTestUpgradeService(studentWithPlan("1", 3, "2024-01-01"))

	res, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{StudentIDs: []string{"1", "1"}}, "admin-1")
	if err != nil {
		t.Fatalf("UpgradeStudents 不应返回错误: %v", err)
	}
	if !res.Success || res.Total != 1 {
		t.Errorf("重复 id 只处理一次且应全部成功，实际=%+v", res)
	}
	if got := r.students.get("1").Semester; got != 4 {
		t.Errorf("学期应恰好加1，实际=%d", got)
	}
}

func TestUpgradeService_UpgradeStudents_WritesOnlySemester(t *testing.T) {
	svc, r := setupTestUpgradeService(studentWithPlan("1", 2, "2025-01-01"))

	if _, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{StudentIDs: []string{"1"}}, "admin-1"); err != nil {
		t.Fatalf("UpgradeStudents 不应返回错误: %v", err)
	}
	if len(r.students.patches) != 1 {
		t.Fatalf("期望1次局部更新，实际=%d", len(r.students.patches))
	}
	got := r.students.patches[0]
	if got.Semester == nil || *got.Semester != 3 {
		t.Fatalf("期望写入 semester=3，实际=%+v", got)
	}
	if !reflect.DeepEqual(got, model.StudentPatch{Semester: got.Semester}) {
		t.Errorf("升级只应写 semester 字段，实际=%+v", got)
	}
}

func TestUpgradeService_UpgradeStudents_UnknownStudent(t *testing.T) {
	svc, _ := setupTestUpgradeService()

	res, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{StudentIDs: []string{"ghost"}}, "admin-1")
	if err != nil {
		t.Fatalf("UpgradeStudents 不应返回错误: %v", err)
	}
	if res.Success || res.Items[0].Error != ErrStudentNotFound.Error() {
		t.Errorf("不存在的学生应报告为失败单项: %+v", res.Items[0])
	}
}

func TestUpgradeService_UpgradeStudents_AuditFailureKeepsResult(t *testing.T) {
	svc, r := setupTestUpgradeService(studentWithPlan("1", 1, "2025-01-01"))
	r.batches.createErr = errBoom

	res, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{StudentIDs: []string{"1"}}, "admin-1")
	if err != nil {
		t.Fatalf("审计失败不应影响升级结果: %v", err)
	}
	if !res.Success || res.BatchID != "" {
		t.Errorf("期望成功且无 batch_id，实际=%+v", res)
	}
}

func TestUpgradeService_UpgradeStudents_Empty(t *testing.T) {
	svc, _ := setupTestUpgradeService()
	_, err := svc.UpgradeStudents(context.Background(), &dto.UpgradeRequest{}, "admin-1")
	if !errors.Is(err, ErrUpgradeNoStudents) {
		t.Errorf("期望 ErrUpgradeNoStudents，实际: %v", err)
	}
}

// ── ListEligibility 测试 ──

func TestUpgradeService_ListEligibility(t *testing.T) {
	eligible := paidUp(studentWithPlan("1", 1, "2025-07-15"))
	pending := studentWithPlan("2", 1, "2025-07-15")
	pending.PendingFees = rupees(5000)
	final := paidUp(studentWithPlan("3", 6, "2022-01-01"))

	svc, _ := setupTestUpgradeService(pending, final, eligible)

	list, err := svc.ListEligibility(context.Background(), &dto.EligibilityListRequest{})
	if err != nil {
		t.Fatalf("ListEligibility 应成功: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望3条，实际=%d", len(list))
	}
	if list[0].StudentID != "1" || !list[0].Eligible || list[0].NextSemester == nil || *list[0].NextSemester != 2 {
		t.Errorf("可升级学生应排在最前且下一学期=2: %+v", list[0])
	}
	reasons := map[string]string{}
	for _, e := range list {
		reasons[e.StudentID] = e.Reason
	}
	if reasons["2"] != ReasonPendingFees || reasons["3"] != ReasonFinalSemester {
		t.Errorf("原因不符: %v", reasons)
	}

	only, err := svc.ListEligibility(context.Background(), &dto.EligibilityListRequest{OnlyEligible: true})
	if err != nil {
		t.Fatalf("ListEligibility 应成功: %v", err)
	}
	if len(only) != 1 {
		t.Errorf("only_eligible 期望1条，实际=%d", len(only))
	}

	searches := []struct {
		search       string
		onlyEligible bool
		want         int
	}{
		{"r2", false, 1},
		{"  STUDENT 3 ", false, 1},
		{"bca", false, 3},
		{"bca", true, 1},
		{"r2", true, 0},
		{"nobody", false, 0},
	}
	for _, tt := range searches {
		list, err := svc.ListEligibility(context.Background(), &dto.EligibilityListRequest{Search: tt.search, OnlyEligible: tt.onlyEligible})
		if err != nil {
			t.Fatalf("ListEligibility 应成功: %v", err)
		}
		if len(list) != tt.want {
			t.Errorf("search=%q only_eligible=%v 期望%d条，实际=%d", tt.search, tt.onlyEligible, tt.want, len(list))
		}
	}
}
