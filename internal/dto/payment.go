package dto

import "fee-admin/backend/internal/model"

// ── 缴费模块 DTO ──

// CreatePaymentRequest 录入缴费
type CreatePaymentRequest struct {
	StudentID       string      `json:"student_id"       binding:"required"`
	Amount          model.Money `json:"amount"`
	PaymentDate     string      `json:"payment_date"` // 缺省为当天
	PaymentMethod   string      `json:"payment_method"   binding:"required,oneof=Cash Online Check Card"`
	Semester        int         `json:"semester"         binding:"required,min=1"`
	Status          string      `json:"status"           binding:"omitempty,oneof=Completed Pending Failed"`
	TransactionID   string      `json:"transaction_id"   binding:"max=64"`
	ReferenceNumber string      `json:"reference_number" binding:"max=64"`
	BankName        string      `json:"bank_name"        binding:"max=100"`
	Remarks         string      `json:"remarks"          binding:"max=500"`
}

// PaymentListRequest 缴费列表查询
type PaymentListRequest struct {
	PaginationRequest
	StudentID string `form:"student_id"`
	Status    string `form:"status"  binding:"omitempty,oneof=Completed Pending Failed"`
	Method    string `form:"method"  binding:"omitempty,oneof=Cash Online Check Card"`
	From      string `form:"from"` // "2026-01-01"
	To        string `form:"to"`
	Search    string `form:"search"  binding:"max=100"` // 收据号 / 学生姓名
}

// PaymentResponse 缴费记录响应
type PaymentResponse struct {
	ID              string      `json:"id"`
	StudentID       string      `json:"student_id"`
	StudentName     string      `json:"student_name,omitempty"`
	Amount          model.Money `json:"amount"`
	PaymentDate     string      `json:"payment_date"`
	PaymentMethod   string      `json:"payment_method"`
	Semester        int         `json:"semester"`
	Status          string      `json:"status"`
	ReceiptNumber   string      `json:"receipt_number"`
	TransactionID   string      `json:"transaction_id,omitempty"`
	ReferenceNumber string      `json:"reference_number,omitempty"`
	BankName        string      `json:"bank_name,omitempty"`
	Remarks         string      `json:"remarks,omitempty"`
}

// CreatePaymentResponse 录入结果
// student_synced=false 表示缴费已入账但学生汇总字段回写失败，台账仍以流水为准
type CreatePaymentResponse struct {
	Payment       PaymentResponse `json:"payment"`
	StudentSynced bool            `json:"student_synced"`
}
