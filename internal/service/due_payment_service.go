package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 待缴分期派生 ──

// DueRow 一个学生当前应缴的分期
type DueRow struct {
	StudentID       model.ID
	StudentName     string
	RollNumber      string
	CourseName      string
	CurrentSemester int
	Semester        int
	Installment     model.Money
	Paid            model.Money
	Remaining       model.Money
	DueDate         model.Date // 零值表示分期未设置截止日
	IsOverdue       bool
	DaysUntilDue    int
	IsBlocked       bool // 应缴学期早于当前学期
}

// BuildDueRows 为每个有应缴学期的学生生成一行，并按 逾期优先 → 截止日升序 排序。
// 没有分期计划或学期号缺失的学生不产生行。相同输入多次调用结果一致。
func BuildDueRows(students []model.Student, payments []model.Payment, courses []model.Course, today time.Time) []DueRow {
	ledger := NewLedger(payments)
	byID := courseIndex(courses)
	day := model.NewDate(today)

	rows := make([]DueRow, 0)
	for i := range students {
		s := &students[i]
		sem, ok := ledger.PayableSemester(s)
		if !ok {
			continue
		}
		fee, _ := s.Installment(sem)
		row := DueRow{
			StudentID:       s.ID,
			StudentName:     s.Name,
			RollNumber:      s.RollNumber,
			CourseName:      courseNameOf(s, byID),
			CurrentSemester: s.Semester.Int(),
			Semester:        sem,
			Installment:     fee.Amount,
			Paid:            ledger.Paid(s.ID, sem),
			Remaining:       ledger.Remaining(s.ID, fee),
			DueDate:         fee.DueDate,
			IsBlocked:       sem < s.Semester.Int(),
		}
		if !fee.DueDate.IsZero() {
			row.IsOverdue = fee.DueDate.Before(day.Time)
			row.DaysUntilDue = DaysUntil(day, fee.DueDate)
		}
		rows = append(rows, row)
	}

	SortDueRows(rows)
	return rows
}

// DaysUntil 向上取整的天数差，逾期时为负
func DaysUntil(today, due model.Date) int {
	return int(math.Ceil(due.Sub(today.Time).Hours() / 24))
}

// SortDueRows 逾期在前；截止日升序；无截止日排最后；同日按学生 id
func SortDueRows(rows []DueRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}
		if az, bz := a.DueDate.IsZero(), b.DueDate.IsZero(); az != bz {
			return bz
		}
		if !a.DueDate.Equal(b.DueDate.Time) {
			return a.DueDate.Before(b.DueDate.Time)
		}
		return a.StudentID < b.StudentID
	})
}

// FilterDueRows 关键字匹配姓名 / 学号 / 课程（不区分大小写），
// kind 为 overdue 时只保留逾期，为 upcoming 时保留未逾期且 windowDays 内到期的行
func FilterDueRows(rows []DueRow, search, kind string, windowDays int) []DueRow {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]DueRow, 0, len(rows))
	for _, r := range rows {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.StudentName), needle) &&
			!strings.Contains(strings.ToLower(r.RollNumber), needle) &&
			!strings.Contains(strings.ToLower(r.CourseName), needle) {
			continue
		}
		switch kind {
		case dto.DueFilterOverdue:
			if !r.IsOverdue {
				continue
			}
		case dto.DueFilterUpcoming:
			if r.IsOverdue || r.DueDate.IsZero() || r.DaysUntilDue > windowDays {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ────────────────────── Service ──────────────────────

// DuePaymentService 待缴费业务接口
type DuePaymentService interface {
	List(ctx context.Context, req *dto.DuePaymentListRequest) (*dto.DuePaymentListResponse, error)
	// Rows 未过滤的全部待缴行，供导出与报表使用
	Rows(ctx context.Context) ([]DueRow, error)
}

type duePaymentService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	clock  Clock
	logger *zap.Logger
}

// NewDuePaymentService 创建 DuePaymentService 实例
func NewDuePaymentService(repo *repository.Repository, cfg *config.FeeConfig, clock Clock, logger *zap.Logger) DuePaymentService {
	return &duePaymentService{repo: repo, cfg: cfg, clock: clock, logger: logger}
}

func (s *duePaymentService) Rows(ctx context.Context) ([]DueRow, error) {
	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		s.logger.Error("读取待缴费数据失败", zap.Error(err))
		return nil, err
	}
	return BuildDueRows(snap.students, snap.payments, snap.courses, s.clock()), nil
}

func (s *duePaymentService) List(ctx context.Context, req *dto.DuePaymentListRequest) (*dto.DuePaymentListResponse, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}

	kind := req.Filter
	if kind == "" {
		kind = dto.DueFilterAll
	}
	filtered := FilterDueRows(rows, req.Search, kind, s.cfg.UpcomingWindowDays)

	resp := &dto.DuePaymentListResponse{
		List:  make([]dto.DuePaymentResponse, 0, len(filtered)),
		Total: len(filtered),
	}
	for _, r := range filtered {
		resp.List = append(resp.List, toDuePaymentResponse(r))
		resp.TotalRemaining += r.Remaining
		if r.IsOverdue {
			resp.OverdueCount++
		} else if !r.DueDate.IsZero() && r.DaysUntilDue <= s.cfg.UpcomingWindowDays {
			resp.UpcomingCount++
		}
	}
	return resp, nil
}

func toDuePaymentResponse(r DueRow) dto.DuePaymentResponse {
	resp := dto.DuePaymentResponse{
		StudentID:         r.StudentID.String(),
		StudentName:       r.StudentName,
		RollNumber:        r.RollNumber,
		CourseName:        r.CourseName,
		CurrentSemester:   r.CurrentSemester,
		Semester:          r.Semester,
		InstallmentAmount: r.Installment,
		PaidAmount:        r.Paid,
		RemainingAmount:   r.Remaining,
		IsOverdue:         r.IsOverdue,
		IsBlocked:         r.IsBlocked,
	}
	if !r.DueDate.IsZero() {
		due := r.DueDate.String()
		days := r.DaysUntilDue
		resp.DueDate = &due
		resp.DaysUntilDue = &days
	}
	return resp
}
