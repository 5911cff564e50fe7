package handler

import (
	"errors"
	"sort"

	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生列表（搜索 / 过滤 / 排序 / 分页）
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// GetLedger 学生学费台账
// GET /api/v1/students/:id/ledger
func (h *StudentHandler) GetLedger(c *gin.Context) {
	ledger, err := h.studentSvc.GetLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, ledger)
}

// AdmitStudent 办理入学
// POST /api/v1/students
func (h *StudentHandler) AdmitStudent(c *gin.Context) {
	var req dto.AdmitStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	student, err := h.studentSvc.Admit(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 更新学生信息
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkDeleteStudents 批量删除学生
// POST /api/v1/students/bulk-delete
func (h *StudentHandler) BulkDeleteStudents(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.studentSvc.BulkDelete(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Batch(c, result.Success, result)
}

// ImportStudents Excel 批量入学
// POST /api/v1/students/import (multipart/form-data, field="file")
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13101, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	rows, rowErrs, err := h.studentSvc.ParseImportFile(file)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	result, err := h.studentSvc.Import(c.Request.Context(), rows, operatorID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}
	result.RowErrors = append(rowErrs, result.RowErrors...)
	sort.SliceStable(result.RowErrors, func(i, j int) bool { return result.RowErrors[i].Row < result.RowErrors[j].Row })

	allOK := len(result.RowErrors) == 0 && (result.Batch == nil || result.Batch.Success)
	response.Batch(c, allOK, result)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrStudentRollExists):
		response.Conflict(c, 13002, "学号已存在")
	case errors.Is(err, service.ErrStudentInvalidDate):
		response.BadRequest(c, 13003, "入学日期格式无效")
	case errors.Is(err, service.ErrStudentCourseNotFound):
		response.BadRequest(c, 13004, "所选课程不存在")
	case errors.Is(err, service.ErrStudentCourseNoPlan):
		response.Unprocessable(c, 13005, "课程未配置学期数，无法生成分期计划")
	case errors.Is(err, service.ErrStudentNoIDs):
		response.BadRequest(c, 13006, "未选择需要删除的学生")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 13101, "无法解析Excel文件")
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13102, err.Error())
	default:
		handleUpstreamError(c, err)
	}
}
