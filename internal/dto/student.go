package dto

import "fee-admin/backend/internal/model"

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询
type StudentListRequest struct {
	PaginationRequest
	Search   string `form:"search"    binding:"max=100"`
	CourseID string `form:"course_id"`
	Semester int    `form:"semester"  binding:"omitempty,min=1"`
	Status   string `form:"status"    binding:"omitempty,oneof=active inactive"`
	SortBy   string `form:"sort_by"   binding:"omitempty,oneof=name roll_number admission_date pending_fees semester"`
	Order    string `form:"order"     binding:"omitempty,oneof=asc desc"`
}

// AdmitStudentRequest 学生入学请求（生成分期计划）
type AdmitStudentRequest struct {
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	RollNumber    string `json:"roll_number"    binding:"required,max=32"`
	Email         string `json:"email"          binding:"omitempty,email"`
	Phone         string `json:"phone"          binding:"omitempty,max=20"`
	GuardianName  string `json:"guardian_name"  binding:"max=100"`
	Address       string `json:"address"        binding:"max=300"`
	CourseID      string `json:"course_id"      binding:"required"`
	AdmissionDate string `json:"admission_date" binding:"required"` // "2023-01-01"
	Semester      int    `json:"semester"       binding:"omitempty,min=1"`
}

// UpdateStudentRequest 更新学生身份信息（学期号只能由升级操作修改）
type UpdateStudentRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	Phone        *string `json:"phone"         binding:"omitempty,max=20"`
	GuardianName *string `json:"guardian_name" binding:"omitempty,max=100"`
	Address      *string `json:"address"       binding:"omitempty,max=300"`
	Status       *string `json:"status"        binding:"omitempty,oneof=active inactive"`
}

// BulkDeleteRequest 批量删除学生
type BulkDeleteRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=500,dive,required"`
}

// SemesterFeeResponse 分期信息
type SemesterFeeResponse struct {
	Semester int         `json:"semester"`
	Amount   model.Money `json:"amount"`
	DueDate  string      `json:"due_date"`
	Paid     bool        `json:"paid"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	RollNumber    string                `json:"roll_number"`
	Email         string                `json:"email,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	GuardianName  string                `json:"guardian_name,omitempty"`
	Address       string                `json:"address,omitempty"`
	CourseID      string                `json:"course_id"`
	CourseName    string                `json:"course_name,omitempty"`
	Semester      int                   `json:"semester"`
	AdmissionDate string                `json:"admission_date"`
	TotalFees     model.Money           `json:"total_fees"`
	PaidFees      model.Money           `json:"paid_fees"`
	PendingFees   model.Money           `json:"pending_fees"`
	Status        string                `json:"status"`
	SemesterFees  []SemesterFeeResponse `json:"semester_fees"`
}

// LedgerEntry 分期台账行：paid 由缴费流水重新计算
type LedgerEntry struct {
	Semester  int         `json:"semester"`
	Amount    model.Money `json:"amount"`
	Paid      model.Money `json:"paid"`
	Remaining model.Money `json:"remaining"`
	DueDate   string      `json:"due_date"`
	Settled   bool        `json:"settled"`
	IsOverdue bool        `json:"is_overdue"`
}

// StudentLedgerResponse 学生学费台账
type StudentLedgerResponse struct {
	Student         StudentResponse     `json:"student"`
	Entries         []LedgerEntry       `json:"entries"`
	PayableSemester *int                `json:"payable_semester"` // null 表示当前无应缴分期
	PayableAmount   model.Money         `json:"payable_amount"`
	Eligibility     EligibilityResponse `json:"eligibility"`
}
