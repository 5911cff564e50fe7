package repository

import (
	"context"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/resourceapi"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	api *resourceapi.Client
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(api *resourceapi.Client) CourseRepository {
	return &courseRepo{api: api}
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := r.api.List(ctx, resourceapi.Courses, nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := r.api.Get(ctx, resourceapi.Courses, id, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.api.Create(ctx, resourceapi.Courses, course, course)
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.api.Replace(ctx, resourceapi.Courses, course.ID.String(), course, course)
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, resourceapi.Courses, id)
}
