package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/redis"
)

// ── 测试替身 ──

type memCache struct {
	data    map[string][]byte
	getErr  error
	deletes int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.deletes++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type countingStudentRepo struct {
	students  []model.Student
	listCalls int
	updateErr error
}

func (r *countingStudentRepo) List(context.Context) ([]model.Student, error) {
	r.listCalls++
	return append([]model.Student(nil), r.students...), nil
}

func (r *countingStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	for i := range r.students {
		if r.students[i].ID.String() == id {
			s := r.students[i]
			return &s, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *countingStudentRepo) Create(_ context.Context, s *model.Student) error {
	r.students = append(r.students, *s)
	return nil
}

func (r *countingStudentRepo) Patch(_ context.Context, id string, p *model.StudentPatch) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.students {
		if r.students[i].ID.String() == id {
			p.ApplyTo(&r.students[i])
		}
	}
	return nil
}

func (r *countingStudentRepo) Delete(context.Context, string) error { return nil }

// ── 测试 ──

func TestCachedStudentRepo_ListHitsCache(t *testing.T) {
	inner := &countingStudentRepo{students: []model.Student{{ID: "1", Name: "Asha", Semester: 1}}}
	repo := NewCachedStudentRepo(inner, newMemCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List 失败: %v", err)
		}
		if len(list) != 1 || list[0].Name != "Asha" {
			t.Fatalf("列表内容不符: %+v", list)
		}
	}
	if inner.listCalls != 1 {
		t.Errorf("期望只回源1次，实际=%d", inner.listCalls)
	}
}

func TestCachedStudentRepo_PatchInvalidates(t *testing.T) {
	inner := &countingStudentRepo{students: []model.Student{{ID: "1", Name: "Asha", Semester: 1}}}
	repo := NewCachedStudentRepo(inner, newMemCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	next := model.Ordinal(2)
	if err := repo.Patch(ctx, "1", &model.StudentPatch{Semester: &next}); err != nil {
		t.Fatalf("Patch 失败: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if list[0].Semester != 2 {
		t.Errorf("写后读应看到学期2，实际=%d", list[0].Semester)
	}
	if inner.listCalls != 2 {
		t.Errorf("失效后应重新回源，实际回源次数=%d", inner.listCalls)
	}
}

func TestCachedStudentRepo_InvalidatesEvenOnFailedWrite(t *testing.T) {
	inner := &countingStudentRepo{updateErr: errors.New("boom")}
	cache := newMemCache()
	repo := NewCachedStudentRepo(inner, cache, time.Minute, zap.NewNop())

	if err := repo.Patch(context.Background(), "1", &model.StudentPatch{}); err == nil {
		t.Fatal("期望透传上游错误")
	}
	if cache.deletes != 1 {
		t.Errorf("期望失效1次，实际=%d", cache.deletes)
	}
}

func TestCachedStudentRepo_CacheFailureFallsThrough(t *testing.T) {
	inner := &countingStudentRepo{students: []model.Student{{ID: "1"}}}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	repo := NewCachedStudentRepo(inner, cache, time.Minute, zap.NewNop())

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("缓存故障不应影响读取: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望1条记录，实际=%d", len(list))
	}
}
