package dto

import "fee-admin/backend/internal/model"

// ── 待缴费模块 DTO ──

// 待缴费筛选类型
const (
	DueFilterAll      = "all"
	DueFilterOverdue  = "overdue"
	DueFilterUpcoming = "upcoming"
)

// DuePaymentListRequest 待缴费列表查询
type DuePaymentListRequest struct {
	Search string `form:"search" binding:"max=100"`
	Filter string `form:"filter" binding:"omitempty,oneof=all overdue upcoming"`
}

// DuePaymentResponse 待缴分期行
type DuePaymentResponse struct {
	StudentID         string      `json:"student_id"`
	StudentName       string      `json:"student_name"`
	RollNumber        string      `json:"roll_number"`
	CourseName        string      `json:"course_name"`
	CurrentSemester   int         `json:"current_semester"`
	Semester          int         `json:"semester"`
	InstallmentAmount model.Money `json:"installment_amount"`
	PaidAmount        model.Money `json:"paid_amount"`
	RemainingAmount   model.Money `json:"remaining_amount"`
	DueDate           *string     `json:"due_date"`
	IsOverdue         bool        `json:"is_overdue"`
	DaysUntilDue      *int        `json:"days_until_due"`
	IsBlocked         bool        `json:"is_blocked"`
}

// DuePaymentListResponse 待缴费列表与汇总
type DuePaymentListResponse struct {
	List           []DuePaymentResponse `json:"list"`
	Total          int                  `json:"total"`
	OverdueCount   int                  `json:"overdue_count"`
	UpcomingCount  int                  `json:"upcoming_count"`
	TotalRemaining model.Money          `json:"total_remaining"`
}
