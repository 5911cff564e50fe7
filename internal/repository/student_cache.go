package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/redis"
)

// studentListKey 学生全集缓存键
const studentListKey = "cache:students:all"

// Cache 学生集合缓存所需的最小接口，由 *redis.Client 实现
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// cachedStudentRepo 为 List 加一层读缓存，任何写操作后立即失效。
// GetByID 不走缓存，写后读总是看到最新记录。
// 缓存故障只记录日志，不影响主流程。
type cachedStudentRepo struct {
	inner  StudentRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStudentRepo 包装 StudentRepository
func NewCachedStudentRepo(inner StudentRepository, cache Cache, ttl time.Duration, logger *zap.Logger) StudentRepository {
	return &cachedStudentRepo{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (r *cachedStudentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.cache.GetJSON(ctx, studentListKey, &students)
	if err == nil {
		return students, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		r.logger.Warn("读取学生缓存失败", zap.Error(err))
	}

	students, err = r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, studentListKey, students, r.ttl); err != nil {
		r.logger.Warn("写入学生缓存失败", zap.Error(err))
	}
	return students, nil
}

func (r *cachedStudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedStudentRepo) Create(ctx context.Context, student *model.Student) error {
	defer r.invalidate(ctx)
	return r.inner.Create(ctx, student)
}

func (r *cachedStudentRepo) Patch(ctx context.Context, id string, patch *model.StudentPatch) error {
	defer r.invalidate(ctx)
	return r.inner.Patch(ctx, id, patch)
}

func (r *cachedStudentRepo) Delete(ctx context.Context, id string) error {
	defer r.invalidate(ctx)
	return r.inner.Delete(ctx, id)
}

// invalidate 写操作失败也要失效：请求可能已在上游生效
func (r *cachedStudentRepo) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, studentListKey); err != nil {
		r.logger.Warn("清除学生缓存失败", zap.Error(err))
	}
}
