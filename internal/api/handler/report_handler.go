package handler

import (
	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Summary 仪表盘汇总
// GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportSvc.Summary(c.Request.Context())
	if err != nil {
		handleUpstreamError(c, err)
		return
	}

	response.OK(c, summary)
}
