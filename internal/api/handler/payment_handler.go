package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/service"
	"fee-admin/backend/pkg/response"
)

// PaymentHandler 缴费模块 HTTP 处理器
type PaymentHandler struct {
	paymentSvc service.PaymentService
	receiptSvc service.ReceiptService
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService, receiptSvc service.ReceiptService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, receiptSvc: receiptSvc}
}

// ListPayments 缴费流水列表
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req dto.PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	payments, total, err := h.paymentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OKPage(c, payments, total, req.GetPage(), req.GetPageSize())
}

// GetPayment 缴费详情
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

// GetByReceipt 按收据号查询
// GET /api/v1/payments/receipt/:number
func (h *PaymentHandler) GetByReceipt(c *gin.Context) {
	payment, err := h.paymentSvc.GetByReceiptNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

// CreatePayment 录入缴费
// POST /api/v1/payments
//
// 学生汇总回写失败时缴费本身仍然有效，响应中 student_synced=false
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.paymentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, result)
}

// DownloadReceipt 下载收据 PDF
// GET /api/v1/payments/:id/receipt
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	buf, filename, err := h.receiptSvc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	sendFile(c, filename, "application/pdf", buf.Bytes())
}

// handlePaymentError 统一处理缴费模块业务错误
func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 14001, "缴费记录不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "学生不存在")
	case errors.Is(err, service.ErrPaymentAmountInvalid):
		response.BadRequest(c, 14002, "缴费金额必须大于0")
	case errors.Is(err, service.ErrPaymentInvalidDate):
		response.BadRequest(c, 14003, "缴费日期格式无效")
	case errors.Is(err, service.ErrPaymentNothingPayable):
		response.Unprocessable(c, 14004, "该学生当前没有应缴分期")
	case errors.Is(err, service.ErrPaymentWrongSemester):
		response.Unprocessable(c, 14005, err.Error())
	case errors.Is(err, service.ErrPaymentExceedsRemaining):
		response.Unprocessable(c, 14006, err.Error())
	case errors.Is(err, service.ErrReceiptGenerateFail):
		response.InternalError(c)
	default:
		handleUpstreamError(c, err)
	}
}
