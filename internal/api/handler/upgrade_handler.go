package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// UpgradeHandler 学期升级模块 HTTP 处理器
type UpgradeHandler struct {
	upgradeSvc service.UpgradeService
}

// NewUpgradeHandler 创建 UpgradeHandler
func NewUpgradeHandler(upgradeSvc service.UpgradeService) *UpgradeHandler {
	return &UpgradeHandler{upgradeSvc: upgradeSvc}
}

// ListEligibility 学生升级资格列表
// GET /api/v1/upgrades/eligible?search=&only_eligible=
func (h *UpgradeHandler) ListEligibility(c *gin.Context) {
	var req dto.EligibilityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.upgradeSvc.ListEligibility(c.Request.Context(), &req)
	if err != nil {
		handleUpstreamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// UpgradeStudents 批量升级学期
// POST /api/v1/upgrades
//
// 单项失败不影响其他学生；部分失败时返回 207 与逐项结果
func (h *UpgradeHandler) UpgradeStudents(c *gin.Context) {
	var req dto.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.upgradeSvc.UpgradeStudents(c.Request.Context(), &req, operatorID)
	if err != nil {
		if errors.Is(err, service.ErrUpgradeNoStudents) {
			response.BadRequest(c, 15001, "未选择需要升级的学生")
			return
		}
		handleUpstreamError(c, err)
		return
	}

	response.Batch(c, result.Success, result)
}
