package service

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fee-admin/backend/internal/dto"
)

func setupTestExportService() ExportService {
	r := reportFixture()
	cfg := testFeeConfig()
	due := NewDuePaymentService(r.repo, cfg, fixedClock, zap.NewNop())
	return NewExportService(r.repo, due, fixedClock, zap.NewNop())
}

func TestExportService_ExportStudents(t *testing.T) {
	svc := setupTestExportService()

	buf, filename, err := svc.ExportStudents(context.Background())
	if err != nil {
		t.Fatalf("ExportStudents 应成功: %v", err)
	}
	if filename != "学生名册_20260315.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件应可被 excelize 打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("学生")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("期望标题+表头+3行数据，实际=%d行", len(rows))
	}
	if rows[1][0] != "学号" {
		t.Errorf("第2行应为表头，实际=%v", rows[1])
	}
	if rows[2][0] != "R1" || rows[2][2] != "BCA" {
		t.Errorf("数据行应按学号排序并带课程名: %v", rows[2])
	}
}

func TestExportService_ExportPayments_NewestFirst(t *testing.T) {
	svc := setupTestExportService()

	buf, _, err := svc.ExportPayments(context.Background())
	if err != nil {
		t.Fatalf("ExportPayments 应成功: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("缴费")
	if len(rows) != 5 {
		t.Fatalf("期望3笔流水，实际=%d行", len(rows)-2)
	}
	if rows[2][1] != "2026-03-02" || rows[4][1] != "2025-07-01" {
		t.Errorf("流水应按日期倒序: %v / %v", rows[2], rows[4])
	}
}

func TestExportService_ExportDuePayments_Filtered(t *testing.T) {
	svc := setupTestExportService()

	buf, filename, err := svc.ExportDuePayments(context.Background(), &dto.DuePaymentListRequest{Filter: dto.DueFilterOverdue})
	if err != nil {
		t.Fatalf("ExportDuePayments 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应为 xlsx: %s", filename)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("待缴费")
	if len(rows) != 3 {
		t.Fatalf("期望1行逾期数据，实际=%d行", len(rows)-2)
	}
	if rows[2][0] != "R2" || rows[2][10] != "是" {
		t.Errorf("逾期行不符: %v", rows[2])
	}
}
