package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 学期升级模块业务错误 ──

var (
	ErrUpgradeNoStudents = errors.New("未选择需要升级的学生")
)

// UpgradeService 学期升级业务接口
type UpgradeService interface {
	// ListEligibility 全部学生的升级资格
	ListEligibility(ctx context.Context, req *dto.EligibilityListRequest) ([]dto.EligibilityResponse, error)
	// UpgradeStudents 将所选学生的学期号各加 1。
	// 调用方应只提交资格列表中可升级的学生，此处不再复核。
	UpgradeStudents(ctx context.Context, req *dto.UpgradeRequest, operatorID string) (*dto.BatchResult, error)
}

type upgradeService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	batch  *batchRunner
	clock  Clock
	logger *zap.Logger
}

// NewUpgradeService 创建 UpgradeService 实例
func NewUpgradeService(repo *repository.Repository, cfg *config.FeeConfig, batch *batchRunner, clock Clock, logger *zap.Logger) UpgradeService {
	return &upgradeService{repo: repo, cfg: cfg, batch: batch, clock: clock, logger: logger}
}

// ────────────────────── ListEligibility ──────────────────────

func (s *upgradeService) ListEligibility(ctx context.Context, req *dto.EligibilityListRequest) ([]dto.EligibilityResponse, error) {
	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	byID := courseIndex(courses)
	now := s.clock()
	needle := strings.ToLower(strings.TrimSpace(req.Search))

	result := make([]dto.EligibilityResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		courseName := courseNameOf(st, byID)
		if needle != "" &&
			!strings.Contains(strings.ToLower(st.Name), needle) &&
			!strings.Contains(strings.ToLower(st.RollNumber), needle) &&
			!strings.Contains(strings.ToLower(courseName), needle) {
			continue
		}
		e := CheckUpgradeEligibility(st, now, MaxSemesterFor(byID[st.CourseID], s.cfg.DefaultMaxSemester), s.cfg.MonthsPerSemester)
		if req.OnlyEligible && !e.Eligible {
			continue
		}
		result = append(result, toEligibilityResponse(st, courseName, e))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Eligible != result[j].Eligible {
			return result[i].Eligible
		}
		return result[i].RollNumber < result[j].RollNumber
	})
	return result, nil
}

// ────────────────────── UpgradeStudents ──────────────────────

func (s *upgradeService) UpgradeStudents(ctx context.Context, req *dto.UpgradeRequest, operatorID string) (*dto.BatchResult, error) {
	ids := dedupeIDs(req.StudentIDs)
	if len(ids) == 0 {
		return nil, ErrUpgradeNoStudents
	}

	result := s.batch.Run(ctx, model.BatchKindSemesterUpgrade, operatorID, ids, s.upgradeOne)

	s.logger.Info("学期升级完成",
		zap.String("operator", operatorID),
		zap.String("batch_id", result.BatchID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *upgradeService) upgradeOne(ctx context.Context, id string) error {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		return err
	}
	next := student.Semester + 1
	return s.repo.Student.Patch(ctx, id, &model.StudentPatch{Semester: &next})
}
