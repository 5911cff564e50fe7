package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
	apperrors "fee-admin/backend/pkg/errors"
)

// 批量操作会并发调用 mock，所有 mock 都加锁

var errUpstream = fmt.Errorf("%w: PATCH /students -> 503", apperrors.ErrUpstream)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	mu        sync.Mutex
	students  map[model.ID]*model.Student
	seq       int
	updateErr map[model.ID]error
	listErr   error
	updates   int
	patches   []model.StudentPatch
}

func newMockStudentRepo(students ...model.Student) *mockStudentRepo {
	m := &mockStudentRepo{
		students:  make(map[model.ID]*model.Student),
		updateErr: make(map[model.ID]error),
	}
	for i := range students {
		s := students[i]
		m.students[s.ID] = &s
	}
	return m
}

func (m *mockStudentRepo) List(context.Context) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, cloneStudent(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[model.ID(id)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := cloneStudent(s)
	return &c, nil
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s.ID = model.ID(fmt.Sprintf("new-%d", m.seq))
	c := cloneStudent(s)
	m.students[s.ID] = &c
	return nil
}

func (m *mockStudentRepo) Patch(_ context.Context, id string, p *model.StudentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateErr[model.ID(id)]; err != nil {
		return err
	}
	s, ok := m.students[model.ID(id)]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.updates++
	m.patches = append(m.patches, *p)
	p.ApplyTo(s)
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[model.ID(id)]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.students, model.ID(id))
	return nil
}

func (m *mockStudentRepo) get(id model.ID) model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneStudent(m.students[id])
}

func cloneStudent(s *model.Student) model.Student {
	c := *s
	c.SemesterFees = append([]model.SemesterFee(nil), s.SemesterFees...)
	return c
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	mu        sync.Mutex
	payments  []model.Payment
	createErr error
}

func newMockPaymentRepo(payments ...model.Payment) *mockPaymentRepo {
	return &mockPaymentRepo{payments: payments}
}

func (m *mockPaymentRepo) List(context.Context) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Payment(nil), m.payments...), nil
}

func (m *mockPaymentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, p := range m.payments {
		if p.StudentID.String() == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID.String() == id {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockPaymentRepo) GetByReceiptNumber(_ context.Context, receipt string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ReceiptNumber == receipt {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = model.ID(fmt.Sprintf("pay-%d", len(m.payments)+1))
	m.payments = append(m.payments, *p)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	mu      sync.Mutex
	courses map[model.ID]*model.Course
	seq     int
}

func newMockCourseRepo(courses ...model.Course) *mockCourseRepo {
	m := &mockCourseRepo{courses: make(map[model.ID]*model.Course)}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *mockCourseRepo) List(context.Context) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[model.ID(id)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = model.ID(fmt.Sprintf("course-%d", m.seq))
	cc := *c
	m.courses[c.ID] = &cc
	return nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := *c
	m.courses[c.ID] = &cc
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[model.ID(id)]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.courses, model.ID(id))
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[model.ID]*model.User
}

func newMockUserRepo(users ...model.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[model.ID]*model.User)}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[model.ID(id)]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ── Mock BatchOperationRepository ──

type mockBatchOpRepo struct {
	mu        sync.Mutex
	ops       []model.BatchOperation
	createErr error
}

func newMockBatchOpRepo() *mockBatchOpRepo { return &mockBatchOpRepo{} }

func (m *mockBatchOpRepo) Create(_ context.Context, op *model.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.ops = append(m.ops, *op)
	return nil
}

func (m *mockBatchOpRepo) GetByID(_ context.Context, id string) (*model.BatchOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ops {
		if m.ops[i].BatchID == id {
			op := m.ops[i]
			return &op, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBatchOpRepo) List(_ context.Context, kind string, offset, limit int) ([]model.BatchOperation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BatchOperation
	for _, op := range m.ops {
		if kind == "" || op.Kind == kind {
			out = append(out, op)
		}
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── 测试夹具 ──

// fixedNow 所有测试共用的"当前时间"
var fixedNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testFeeConfig() *config.FeeConfig {
	return &config.FeeConfig{
		DefaultMaxSemester: 6,
		MonthsPerSemester:  6,
		UpcomingWindowDays: 30,
		Currency:           "INR",
		InstitutionName:    "Test Institute",
		ReceiptPrefix:      "RCP",
	}
}

type testRepos struct {
	repo     *repository.Repository
	students *mockStudentRepo
	payments *mockPaymentRepo
	courses  *mockCourseRepo
	users    *mockUserRepo
	batches  *mockBatchOpRepo
}

func newTestRepos() *testRepos {
	r := &testRepos{
		students: newMockStudentRepo(),
		payments: newMockPaymentRepo(),
		courses:  newMockCourseRepo(),
		users:    newMockUserRepo(),
		batches:  newMockBatchOpRepo(),
	}
	r.repo = &repository.Repository{
		Student:        r.students,
		Payment:        r.payments,
		Course:         r.courses,
		User:           r.users,
		BatchOperation: r.batches,
	}
	return r
}

func newTestBatchRunner(r *testRepos) *batchRunner {
	return newBatchRunner(r.batches, 4, fixedClock, zap.NewNop())
}

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rupees(n int64) model.Money { return model.NewMoneyFromMajor(n) }

// studentWithPlan 6 学期课程、每期 60000 的学生
func studentWithPlan(id string, semester int, admission string) model.Student {
	adm := date(admission)
	fees := make([]model.SemesterFee, 0, 6)
	for k := 1; k <= 6; k++ {
		fees = append(fees, model.SemesterFee{
			Semester: model.Ordinal(k),
			Amount:   rupees(60000),
			DueDate:  adm.AddMonths(6 * (k - 1)),
		})
	}
	return model.Student{
		ID:            model.ID(id),
		Name:          "Student " + id,
		RollNumber:    "R" + id,
		CourseID:      "c1",
		Course:        "BCA",
		Semester:      model.Ordinal(semester),
		AdmissionDate: adm,
		TotalFees:     rupees(360000),
		PendingFees:   rupees(360000),
		SemesterFees:  fees,
	}
}

func completed(studentID string, semester int, amount model.Money) model.Payment {
	return model.Payment{
		StudentID: model.ID(studentID),
		Semester:  model.Ordinal(semester),
		Amount:    amount,
		Status:    model.PaymentStatusCompleted,
	}
}

var errBoom = errors.New("boom")
