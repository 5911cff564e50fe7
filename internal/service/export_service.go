package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 金额列写入主单位数值，便于在表格中继续计算。
type ExportService interface {
	ExportStudents(ctx context.Context) (*bytes.Buffer, string, error)
	ExportPayments(ctx context.Context) (*bytes.Buffer, string, error)
	ExportDuePayments(ctx context.Context, req *dto.DuePaymentListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	due    DuePaymentService
	clock  Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, due DuePaymentService, clock Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, due: due, clock: clock, logger: logger}
}

// sheetWriter 单 Sheet 表格：第 1 行标题，第 2 行表头，第 3 行起为数据
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func newSheetWriter(sheet, title string, headers []string, widths []float64) (*sheetWriter, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
	})

	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft"})

	return &sheetWriter{f: f, sheet: sheet, row: 3}, nil
}

func (w *sheetWriter) append(values ...interface{}) {
	for i, v := range values {
		w.f.SetCellValue(w.sheet, cell(colName(i), w.row), v)
	}
	w.row++
}

func (w *sheetWriter) finish(logger *zap.Logger) (*bytes.Buffer, error) {
	defer w.f.Close()
	buf := new(bytes.Buffer)
	if err := w.f.Write(buf); err != nil {
		logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ────────────────────── ExportStudents ──────────────────────

func (s *exportService) ExportStudents(ctx context.Context) (*bytes.Buffer, string, error) {
	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		s.logger.Error("读取学生数据失败", zap.Error(err))
		return nil, "", err
	}
	byCourse := courseIndex(snap.courses)
	ledger := NewLedger(snap.payments)
	students := snap.students
	sort.SliceStable(students, func(i, j int) bool { return students[i].RollNumber < students[j].RollNumber })

	w, err := newSheetWriter("学生", "学生名册",
		[]string{"学号", "姓名", "课程", "当前学期", "入学日期", "邮箱", "电话", "应缴总额", "已缴", "待缴", "状态"},
		[]float64{14, 18, 20, 10, 12, 24, 16, 14, 14, 14, 10},
	)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for i := range students {
		st := &students[i]
		paid := ledger.TotalPaid(st.ID)
		w.append(
			st.RollNumber, st.Name, courseNameOf(st, byCourse), st.Semester.Int(),
			st.AdmissionDate.String(), st.Email, st.Phone,
			st.TotalFees.Decimal().InexactFloat64(),
			paid.Decimal().InexactFloat64(),
			(st.TotalFees - paid).NonNegative().Decimal().InexactFloat64(),
			studentStatus(st),
		)
	}

	buf, err := w.finish(s.logger)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("学生名册_%s.xlsx", s.clock().Format("20060102")), nil
}

// ────────────────────── ExportPayments ──────────────────────

func (s *exportService) ExportPayments(ctx context.Context) (*bytes.Buffer, string, error) {
	payments, err := s.repo.Payment.List(ctx)
	if err != nil {
		s.logger.Error("读取缴费数据失败", zap.Error(err))
		return nil, "", err
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate.Time)
	})

	w, err := newSheetWriter("缴费", "缴费流水",
		[]string{"收据号", "缴费日期", "学生", "学期", "金额", "方式", "状态", "交易号", "参考号", "银行", "备注"},
		[]float64{26, 12, 18, 8, 14, 10, 12, 20, 20, 16, 30},
	)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for i := range payments {
		p := &payments[i]
		w.append(
			p.ReceiptNumber, p.PaymentDate.String(), p.StudentName, p.Semester.Int(),
			p.Amount.Decimal().InexactFloat64(), string(p.PaymentMethod), string(p.Status),
			p.TransactionID, p.ReferenceNumber, p.BankName, p.Remarks,
		)
	}

	buf, err := w.finish(s.logger)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("缴费流水_%s.xlsx", s.clock().Format("20060102")), nil
}

// ────────────────────── ExportDuePayments ──────────────────────

func (s *exportService) ExportDuePayments(ctx context.Context, req *dto.DuePaymentListRequest) (*bytes.Buffer, string, error) {
	list, err := s.due.List(ctx, req)
	if err != nil {
		return nil, "", err
	}

	w, err := newSheetWriter("待缴费", "待缴分期",
		[]string{"学号", "姓名", "课程", "当前学期", "应缴学期", "分期金额", "已缴", "剩余", "截止日期", "距截止天数", "逾期", "欠费阻塞"},
		[]float64{14, 18, 20, 10, 10, 14, 14, 14, 12, 12, 8, 10},
	)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for _, r := range list.List {
		due, days := "", ""
		if r.DueDate != nil {
			due = *r.DueDate
			days = fmt.Sprintf("%d", *r.DaysUntilDue)
		}
		w.append(
			r.RollNumber, r.StudentName, r.CourseName, r.CurrentSemester, r.Semester,
			r.InstallmentAmount.Decimal().InexactFloat64(),
			r.PaidAmount.Decimal().InexactFloat64(),
			r.RemainingAmount.Decimal().InexactFloat64(),
			due, days, yesNo(r.IsOverdue), yesNo(r.IsBlocked),
		)
	}

	buf, err := w.finish(s.logger)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("待缴分期_%s.xlsx", s.clock().Format("20060102")), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
