package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// snapshot 一次读取的三个集合，供派生计算使用
type snapshot struct {
	students []model.Student
	payments []model.Payment
	courses  []model.Course
}

// loadSnapshot 并发读取学生、缴费、课程集合，任一失败则整体失败
func loadSnapshot(ctx context.Context, repo *repository.Repository) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.students, err = repo.Student.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.payments, err = repo.Payment.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.courses, err = repo.Course.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// courseIndex 课程 id → 课程
func courseIndex(courses []model.Course) map[model.ID]*model.Course {
	idx := make(map[model.ID]*model.Course, len(courses))
	for i := range courses {
		idx[courses[i].ID] = &courses[i]
	}
	return idx
}

// courseNameOf 优先使用课程集合中的名称，其次使用学生记录上的冗余名称
func courseNameOf(s *model.Student, courses map[model.ID]*model.Course) string {
	if c, ok := courses[s.CourseID]; ok && c.Name != "" {
		return c.Name
	}
	return s.Course
}
