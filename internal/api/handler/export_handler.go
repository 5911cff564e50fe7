package handler

import (
	"bytes"
	"errors"

	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStudents 导出学生名册
// GET /api/v1/export/students
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportStudents(c.Request.Context())
	h.send(c, buf, filename, err)
}

// ExportPayments 导出缴费流水
// GET /api/v1/export/payments
func (h *ExportHandler) ExportPayments(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportPayments(c.Request.Context())
	h.send(c, buf, filename, err)
}

// ExportDuePayments 导出待缴分期（过滤条件同列表）
// GET /api/v1/export/due-payments?search=&filter=
func (h *ExportHandler) ExportDuePayments(c *gin.Context) {
	var req dto.DuePaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportDuePayments(c.Request.Context(), &req)
	h.send(c, buf, filename, err)
}

func (h *ExportHandler) send(c *gin.Context, buf *bytes.Buffer, filename string, err error) {
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, filename, xlsxMimeType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleUpstreamError(c, err)
	}
}
