package dto

import "fee-admin/backend/internal/model"

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name           string       `json:"name"            binding:"required,min=2,max=100"`
	Department     string       `json:"department"      binding:"required,max=100"`
	TotalSemesters int          `json:"total_semesters" binding:"required,min=1,max=20"`
	TotalFees      model.Money  `json:"total_fees"`
	SemesterFees   *model.Money `json:"semester_fees"`
	Description    string       `json:"description"     binding:"max=500"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name           *string      `json:"name"            binding:"omitempty,min=2,max=100"`
	Department     *string      `json:"department"      binding:"omitempty,max=100"`
	TotalSemesters *int         `json:"total_semesters" binding:"omitempty,min=1,max=20"`
	TotalFees      *model.Money `json:"total_fees"`
	SemesterFees   *model.Money `json:"semester_fees"`
	Description    *string      `json:"description"     binding:"omitempty,max=500"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Department     string      `json:"department"`
	TotalSemesters int         `json:"total_semesters"`
	TotalFees      model.Money `json:"total_fees"`
	SemesterFees   model.Money `json:"semester_fees"` // 显式配置或推导值
	Description    string      `json:"description,omitempty"`
}
