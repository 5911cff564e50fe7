package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// BatchOperationHandler 批量操作审计 HTTP 处理器
type BatchOperationHandler struct {
	batchSvc service.BatchOperationService
}

// NewBatchOperationHandler 创建 BatchOperationHandler
func NewBatchOperationHandler(batchSvc service.BatchOperationService) *BatchOperationHandler {
	return &BatchOperationHandler{batchSvc: batchSvc}
}

// ListBatchOperations 审计记录列表（不含单项）
// GET /api/v1/batch-operations?kind=
func (h *BatchOperationHandler) ListBatchOperations(c *gin.Context) {
	var req dto.BatchOperationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ops, total, err := h.batchSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, ops, total, req.GetPage(), req.GetPageSize())
}

// GetBatchOperation 审计记录详情（含单项）
// GET /api/v1/batch-operations/:id
func (h *BatchOperationHandler) GetBatchOperation(c *gin.Context) {
	op, err := h.batchSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBatchOperationNotFound) {
			response.NotFound(c, 16001, "批量操作记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, op)
}
