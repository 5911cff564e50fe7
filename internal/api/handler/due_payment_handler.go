package handler

import (
	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// DuePaymentHandler 待缴费模块 HTTP 处理器
type DuePaymentHandler struct {
	dueSvc service.DuePaymentService
}

// NewDuePaymentHandler 创建 DuePaymentHandler
func NewDuePaymentHandler(dueSvc service.DuePaymentService) *DuePaymentHandler {
	return &DuePaymentHandler{dueSvc: dueSvc}
}

// ListDuePayments 待缴分期列表
// GET /api/v1/due-payments?search=&filter=all|overdue|upcoming
func (h *DuePaymentHandler) ListDuePayments(c *gin.Context) {
	var req dto.DuePaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.dueSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleUpstreamError(c, err)
		return
	}

	response.OK(c, result)
}
