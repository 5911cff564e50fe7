package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ReportService 报表业务接口
type ReportService interface {
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	clock  Clock
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, cfg *config.FeeConfig, clock Clock, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, cfg: cfg, clock: clock, logger: logger}
}

// Summary 仪表盘汇总。已收金额以 Completed 流水为准，
// 应收 / 待收以学生分期计划为准，不读取学生记录上的冗余汇总字段。
func (s *reportService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		s.logger.Error("读取报表数据失败", zap.Error(err))
		return nil, err
	}
	now := s.clock()
	ledger := NewLedger(snap.payments)
	byCourse := courseIndex(snap.courses)

	resp := &dto.SummaryResponse{
		StudentCount: len(snap.students),
		CourseCount:  len(snap.courses),
		PaymentCount: len(snap.payments),
	}

	// 学生维度
	courseBuckets := make(map[string]*dto.AmountBucket)
	for i := range snap.students {
		st := &snap.students[i]
		total := SumInstallments(st.SemesterFees)
		if total == 0 {
			total = st.TotalFees
		}
		pending := (total - ledger.TotalPaid(st.ID)).NonNegative()
		resp.TotalFees += total
		resp.TotalPending += pending

		name := courseNameOf(st, byCourse)
		if name == "" {
			name = "-"
		}
		b, ok := courseBuckets[name]
		if !ok {
			b = &dto.AmountBucket{Key: name}
			courseBuckets[name] = b
		}
		b.Count++
		b.Amount += pending

		e := CheckUpgradeEligibility(st, now, MaxSemesterFor(byCourse[st.CourseID], s.cfg.DefaultMaxSemester), s.cfg.MonthsPerSemester)
		if e.Eligible {
			resp.EligibleForUpgrade++
		}
	}

	// 流水维度
	months := lastMonths(now, 12)
	monthBuckets := make(map[string]*dto.AmountBucket, len(months))
	for _, m := range months {
		monthBuckets[m] = &dto.AmountBucket{Key: m}
	}
	methodBuckets := make(map[string]*dto.AmountBucket)
	statusBuckets := make(map[string]*dto.AmountBucket)
	thisMonth := now.Format("2006-01")
	for i := range snap.payments {
		p := &snap.payments[i]
		addBucket(statusBuckets, string(p.Status), p.Amount)
		if !p.IsCompleted() {
			continue
		}
		resp.TotalCollected += p.Amount
		addBucket(methodBuckets, string(p.PaymentMethod), p.Amount)
		if p.PaymentDate.IsZero() {
			continue
		}
		key := p.PaymentDate.Format("2006-01")
		if key == thisMonth {
			resp.CollectedThisMonth += p.Amount
		}
		if b, ok := monthBuckets[key]; ok {
			b.Count++
			b.Amount += p.Amount
		}
	}

	for _, r := range BuildDueRows(snap.students, snap.payments, snap.courses, now) {
		if r.IsOverdue {
			resp.OverdueCount++
			resp.OverdueAmount += r.Remaining
		}
	}

	resp.ByMethod = sortedBuckets(methodBuckets)
	resp.ByStatus = sortedBuckets(statusBuckets)
	resp.StudentsByCourse = sortedBuckets(courseBuckets)
	resp.MonthlyCollection = make([]dto.AmountBucket, 0, len(months))
	for _, m := range months {
		resp.MonthlyCollection = append(resp.MonthlyCollection, *monthBuckets[m])
	}
	return resp, nil
}

func addBucket(buckets map[string]*dto.AmountBucket, key string, amount model.Money) {
	if key == "" {
		key = "-"
	}
	b, ok := buckets[key]
	if !ok {
		b = &dto.AmountBucket{Key: key}
		buckets[key] = b
	}
	b.Count++
	b.Amount += amount
}

func sortedBuckets(buckets map[string]*dto.AmountBucket) []dto.AmountBucket {
	out := make([]dto.AmountBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// lastMonths 含当月在内的最近 n 个月，升序，格式 YYYY-MM
func lastMonths(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return out
}
