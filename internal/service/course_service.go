package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrCourseNameExists  = errors.New("课程名称已存在")
	ErrCourseInUse       = errors.New("课程下存在学生，无法删除")
	ErrCourseFeesInvalid = errors.New("课程学费必须大于0")
)

// CourseService 课程业务接口
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	// Delete 仍有学生引用该课程时拒绝删除
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return strings.ToLower(courses[i].Name) < strings.ToLower(courses[j].Name)
	})

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if req.TotalFees <= 0 || (req.SemesterFees != nil && *req.SemesterFees < 0) {
		return nil, ErrCourseFeesInvalid
	}
	if err := s.checkNameUnique(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:           strings.TrimSpace(req.Name),
		Department:     strings.TrimSpace(req.Department),
		TotalSemesters: model.Ordinal(req.TotalSemesters),
		TotalFees:      req.TotalFees,
		SemesterFees:   req.SemesterFees,
		Description:    req.Description,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) checkNameUnique(ctx context.Context, name, exceptID string) error {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return err
	}
	for _, c := range courses {
		if c.ID.String() != exceptID && strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return ErrCourseNameExists
		}
	}
	return nil
}

// ────────────────────── Update ──────────────────────

// Update 只影响之后入学的学生；已生成的分期计划不随课程变化
func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && !strings.EqualFold(*req.Name, course.Name) {
		if err := s.checkNameUnique(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		course.Department = strings.TrimSpace(*req.Department)
	}
	if req.TotalSemesters != nil {
		course.TotalSemesters = model.Ordinal(*req.TotalSemesters)
	}
	if req.TotalFees != nil {
		if *req.TotalFees <= 0 {
			return nil, ErrCourseFeesInvalid
		}
		course.TotalFees = *req.TotalFees
	}
	if req.SemesterFees != nil {
		if *req.SemesterFees < 0 {
			return nil, ErrCourseFeesInvalid
		}
		course.SemesterFees = req.SemesterFees
	}
	if req.Description != nil {
		course.Description = *req.Description
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	if _, err := s.getCourse(ctx, id); err != nil {
		return err
	}

	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return err
	}
	for i := range students {
		if students[i].CourseID.String() == id {
			return ErrCourseInUse
		}
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrCourseNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
