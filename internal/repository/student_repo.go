package repository

import (
	"context"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/resourceapi"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// Create 写入后回填资源 API 生成的 id
	Create(ctx context.Context, student *model.Student) error
	// Patch 局部更新（PATCH），只写补丁中的字段
	Patch(ctx context.Context, id string, patch *model.StudentPatch) error
	Delete(ctx context.Context, id string) error
}

type studentRepo struct {
	api *resourceapi.Client
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(api *resourceapi.Client) StudentRepository {
	return &studentRepo{api: api}
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	if err := r.api.List(ctx, resourceapi.Students, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	if err := r.api.Get(ctx, resourceapi.Students, id, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.api.Create(ctx, resourceapi.Students, student, student)
}

func (r *studentRepo) Patch(ctx context.Context, id string, patch *model.StudentPatch) error {
	return r.api.Patch(ctx, resourceapi.Students, id, patch, nil)
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, resourceapi.Students, id)
}
