package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound       = errors.New("学生不存在")
	ErrStudentRollExists     = errors.New("学号已存在")
	ErrStudentInvalidDate    = errors.New("入学日期格式无效")
	ErrStudentCourseNotFound = errors.New("所选课程不存在")
	ErrStudentCourseNoPlan   = errors.New("课程未配置学期数，无法生成分期计划")
	ErrStudentNoIDs          = errors.New("未选择需要删除的学生")
)

// StudentService 学生业务接口
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	// GetLedger 学费台账：每期已缴 / 剩余由缴费流水重新计算
	GetLedger(ctx context.Context, id string) (*dto.StudentLedgerResponse, error)
	// Admit 办理入学并生成分期计划
	Admit(ctx context.Context, req *dto.AdmitStudentRequest) (*dto.StudentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest, operatorID string) (*dto.BatchResult, error)
	// ParseImportFile 解析导入 Excel，行级错误单独返回
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, []dto.ImportRowError, error)
	// Import 批量入学
	Import(ctx context.Context, rows []ImportStudentRow, operatorID string) (*dto.ImportStudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	batch  *batchRunner
	clock  Clock
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, cfg *config.FeeConfig, batch *batchRunner, clock Clock, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, cfg: cfg, batch: batch, clock: clock, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}
	byID := courseIndex(courses)

	needle := strings.ToLower(strings.TrimSpace(req.Search))
	filtered := make([]model.Student, 0, len(students))
	for _, st := range students {
		if req.CourseID != "" && st.CourseID.String() != req.CourseID {
			continue
		}
		if req.Semester > 0 && st.Semester.Int() != req.Semester {
			continue
		}
		if req.Status != "" && studentStatus(&st) != req.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(st.Name), needle) &&
			!strings.Contains(strings.ToLower(st.RollNumber), needle) &&
			!strings.Contains(strings.ToLower(st.Email), needle) {
			continue
		}
		filtered = append(filtered, st)
	}

	sortStudents(filtered, req.SortBy, req.Order == "desc")

	start, end := req.Window(len(filtered))
	result := make([]dto.StudentResponse, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, toStudentResponse(&filtered[i], courseNameOf(&filtered[i], byID)))
	}
	return result, int64(len(filtered)), nil
}

func studentStatus(s *model.Student) string {
	if s.Status == "" {
		return model.StudentStatusActive
	}
	return s.Status
}

func sortStudents(list []model.Student, by string, desc bool) {
	less := func(a, b *model.Student) bool {
		switch by {
		case "roll_number":
			return a.RollNumber < b.RollNumber
		case "admission_date":
			return a.AdmissionDate.Before(b.AdmissionDate.Time)
		case "pending_fees":
			return a.PendingFees < b.PendingFees
		case "semester":
			return a.Semester < b.Semester
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(&list[j], &list[i])
		}
		return less(&list[i], &list[j])
	})
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(student, s.courseName(ctx, student))
	return &resp, nil
}

func (s *studentService) getStudent(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// courseName 课程查询失败时退回学生记录上的冗余名称
func (s *studentService) courseName(ctx context.Context, student *model.Student) string {
	if student.CourseID == "" {
		return student.Course
	}
	course, err := s.repo.Course.GetByID(ctx, student.CourseID.String())
	if err != nil {
		return student.Course
	}
	return course.Name
}

// ────────────────────── GetLedger ──────────────────────

func (s *studentService) GetLedger(ctx context.Context, id string) (*dto.StudentLedgerResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.Payment.ListByStudent(ctx, student.ID.String())
	if err != nil {
		s.logger.Error("查询学生缴费记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var course *model.Course
	if student.CourseID != "" {
		if c, err := s.repo.Course.GetByID(ctx, student.CourseID.String()); err == nil {
			course = c
		}
	}
	courseName := student.Course
	if course != nil {
		courseName = course.Name
	}

	ledger := NewLedger(payments)
	today := model.NewDate(s.clock())

	entries := make([]dto.LedgerEntry, 0, len(student.SemesterFees))
	fees := append([]model.SemesterFee(nil), student.SemesterFees...)
	sort.SliceStable(fees, func(i, j int) bool { return fees[i].Semester < fees[j].Semester })
	for _, f := range fees {
		settled := ledger.Settled(student.ID, f)
		entries = append(entries, dto.LedgerEntry{
			Semester:  f.Semester.Int(),
			Amount:    f.Amount,
			Paid:      ledger.Paid(student.ID, f.Semester.Int()),
			Remaining: ledger.Remaining(student.ID, f),
			DueDate:   f.DueDate.String(),
			Settled:   settled,
			IsOverdue: !settled && !f.DueDate.IsZero() && f.DueDate.Before(today.Time),
		})
	}

	resp := &dto.StudentLedgerResponse{
		Student: toStudentResponse(student, courseName),
		Entries: entries,
	}
	if sem, ok := ledger.PayableSemester(student); ok {
		fee, _ := student.Installment(sem)
		resp.PayableSemester = &sem
		resp.PayableAmount = ledger.Remaining(student.ID, fee)
	}
	e := CheckUpgradeEligibility(student, s.clock(), MaxSemesterFor(course, s.cfg.DefaultMaxSemester), s.cfg.MonthsPerSemester)
	resp.Eligibility = toEligibilityResponse(student, courseName, e)
	return resp, nil
}

// ────────────────────── Admit ──────────────────────

func (s *studentService) Admit(ctx context.Context, req *dto.AdmitStudentRequest) (*dto.StudentResponse, error) {
	admission, err := model.ParseDate(req.AdmissionDate)
	if err != nil {
		return nil, ErrStudentInvalidDate
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	existing, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	if rollNumberTaken(existing, req.RollNumber) {
		return nil, ErrStudentRollExists
	}

	student, err := s.newStudent(course, admission, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.String("roll_number", req.RollNumber), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生入学",
		zap.String("id", student.ID.String()),
		zap.String("roll_number", student.RollNumber),
		zap.Int("installments", len(student.SemesterFees)),
	)
	resp := toStudentResponse(student, course.Name)
	return &resp, nil
}

// newStudent 构造新学生记录：已缴为 0，待缴 = 分期总额
func (s *studentService) newStudent(course *model.Course, admission model.Date, req *dto.AdmitStudentRequest) (*model.Student, error) {
	fees := BuildInstallments(course, admission, s.cfg.MonthsPerSemester)
	if len(fees) == 0 {
		return nil, ErrStudentCourseNoPlan
	}
	semester := req.Semester
	if semester < 1 {
		semester = 1
	}
	student := &model.Student{
		Name:          strings.TrimSpace(req.Name),
		RollNumber:    strings.TrimSpace(req.RollNumber),
		Email:         req.Email,
		Phone:         req.Phone,
		GuardianName:  req.GuardianName,
		Address:       req.Address,
		CourseID:      course.ID,
		Course:        course.Name,
		Semester:      model.Ordinal(semester),
		AdmissionDate: admission,
		TotalFees:     SumInstallments(fees),
		SemesterFees:  fees,
		Status:        model.StudentStatusActive,
	}
	student.ApplyPaid(0)
	return student, nil
}

func rollNumberTaken(students []model.Student, roll string) bool {
	roll = strings.TrimSpace(roll)
	for i := range students {
		if strings.EqualFold(students[i].RollNumber, roll) {
			return true
		}
	}
	return false
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &model.StudentPatch{
		Email:        req.Email,
		Phone:        req.Phone,
		GuardianName: req.GuardianName,
		Address:      req.Address,
		Status:       req.Status,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if patch.Empty() {
		resp := toStudentResponse(student, s.courseName(ctx, student))
		return &resp, nil
	}

	if err := s.repo.Student.Patch(ctx, id, patch); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	patch.ApplyTo(student)
	resp := toStudentResponse(student, s.courseName(ctx, student))
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Student.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrStudentNotFound
		}
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *studentService) BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest, operatorID string) (*dto.BatchResult, error) {
	ids := dedupeIDs(req.StudentIDs)
	if len(ids) == 0 {
		return nil, ErrStudentNoIDs
	}
	return s.batch.Run(ctx, model.BatchKindStudentDelete, operatorID, ids, s.Delete), nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportBadFile     = errors.New("无法解析Excel文件")
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/学号/课程/入学日期）")
)

// ImportStudentRow 导入文件中的一行
type ImportStudentRow struct {
	Row           int
	Name          string
	RollNumber    string
	Email         string
	Phone         string
	Course        string // 课程名称或 id
	AdmissionDate string
	Semester      int
}

func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, []dto.ImportRowError, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, nil, ErrImportNoData
	}

	colIndex := parseStudentHeader(excelRows[0])
	for _, required := range []string{"name", "roll_number", "course", "admission_date"} {
		if colIndex[required] < 0 {
			return nil, nil, ErrImportBadHeader
		}
	}

	get := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportStudentRow
	var rowErrs []dto.ImportRowError
	seen := make(map[string]int)
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		item := ImportStudentRow{
			Row:           i + 1,
			Name:          get(raw, "name"),
			RollNumber:    get(raw, "roll_number"),
			Email:         get(raw, "email"),
			Phone:         get(raw, "phone"),
			Course:        get(raw, "course"),
			AdmissionDate: get(raw, "admission_date"),
			Semester:      1,
		}

		// 跳过全空行
		if item.Name == "" && item.RollNumber == "" && item.Course == "" && item.AdmissionDate == "" {
			continue
		}

		switch {
		case item.Name == "" || item.RollNumber == "" || item.Course == "" || item.AdmissionDate == "":
			rowErrs = append(rowErrs, dto.ImportRowError{Row: item.Row, Message: "缺少必填字段"})
			continue
		case seen[strings.ToLower(item.RollNumber)] > 0:
			rowErrs = append(rowErrs, dto.ImportRowError{
				Row:     item.Row,
				Message: fmt.Sprintf("学号与第 %d 行重复", seen[strings.ToLower(item.RollNumber)]),
			})
			continue
		}
		if _, err := model.ParseDate(item.AdmissionDate); err != nil {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: item.Row, Message: "入学日期格式无效"})
			continue
		}
		if sem := get(raw, "semester"); sem != "" {
			n, err := strconv.Atoi(sem)
			if err != nil || n < 1 {
				rowErrs = append(rowErrs, dto.ImportRowError{Row: item.Row, Message: "学期必须为正整数"})
				continue
			}
			item.Semester = n
		}

		seen[strings.ToLower(item.RollNumber)] = item.Row
		rows = append(rows, item)
	}

	if len(rows)+len(rowErrs) == 0 {
		return nil, nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, nil, ErrImportTooManyRows
	}
	return rows, rowErrs, nil
}

// parseStudentHeader 解析表头，返回列名 -> 列索引映射（支持灵活列序）
func parseStudentHeader(header []string) map[string]int {
	idx := map[string]int{
		"name":           -1,
		"roll_number":    -1,
		"email":          -1,
		"phone":          -1,
		"course":         -1,
		"admission_date": -1,
		"semester":       -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "学号", "roll number", "roll_number", "rollnumber":
			idx["roll_number"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "电话", "phone":
			idx["phone"] = i
		case "课程", "course":
			idx["course"] = i
		case "入学日期", "admission date", "admission_date", "admissiondate":
			idx["admission_date"] = i
		case "学期", "semester":
			idx["semester"] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

func (s *studentService) Import(ctx context.Context, rows []ImportStudentRow, operatorID string) (*dto.ImportStudentResponse, error) {
	existing, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ImportStudentResponse{}
	byRoll := make(map[string]ImportStudentRow, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if rollNumberTaken(existing, r.RollNumber) {
			resp.RowErrors = append(resp.RowErrors, dto.ImportRowError{Row: r.Row, Message: ErrStudentRollExists.Error()})
			continue
		}
		byRoll[r.RollNumber] = r
		ids = append(ids, r.RollNumber)
	}
	if len(ids) == 0 {
		return resp, nil
	}

	// 课程切片在批量执行期间只读
	resp.Batch = s.batch.Run(ctx, model.BatchKindStudentImport, operatorID, ids, func(ctx context.Context, roll string) error {
		r := byRoll[roll]
		course := findCourse(courses, r.Course)
		if course == nil {
			return ErrStudentCourseNotFound
		}
		admission, _ := model.ParseDate(r.AdmissionDate)
		student, err := s.newStudent(course, admission, &dto.AdmitStudentRequest{
			Name:       r.Name,
			RollNumber: r.RollNumber,
			Email:      r.Email,
			Phone:      r.Phone,
			Semester:   r.Semester,
		})
		if err != nil {
			return err
		}
		return s.repo.Student.Create(ctx, student)
	})

	s.logger.Info("学生导入完成", zap.String("operator", operatorID), zap.Int("created", resp.Batch.Succeeded), zap.Int("rejected", len(resp.RowErrors)))
	return resp, nil
}

// findCourse 按 id 或名称（不区分大小写）查找课程
func findCourse(courses []model.Course, key string) *model.Course {
	for i := range courses {
		if courses[i].ID.String() == key || strings.EqualFold(courses[i].Name, key) {
			return &courses[i]
		}
	}
	return nil
}
