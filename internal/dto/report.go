package dto

import "fee-admin/backend/internal/model"

// ── 报表模块 DTO ──

// AmountBucket 分组金额
type AmountBucket struct {
	Key    string      `json:"key"`
	Count  int         `json:"count"`
	Amount model.Money `json:"amount"`
}

// SummaryResponse 仪表盘汇总
type SummaryResponse struct {
	StudentCount        int            `json:"student_count"`
	CourseCount         int            `json:"course_count"`
	PaymentCount        int            `json:"payment_count"`
	TotalFees           model.Money    `json:"total_fees"`
	TotalCollected      model.Money    `json:"total_collected"`
	TotalPending        model.Money    `json:"total_pending"`
	CollectedThisMonth  model.Money    `json:"collected_this_month"`
	OverdueCount        int            `json:"overdue_count"`
	OverdueAmount       model.Money    `json:"overdue_amount"`
	EligibleForUpgrade  int            `json:"eligible_for_upgrade"`
	ByMethod            []AmountBucket `json:"by_method"`
	ByStatus            []AmountBucket `json:"by_status"`
	MonthlyCollection   []AmountBucket `json:"monthly_collection"` // 近12个月，key=YYYY-MM
	StudentsByCourse    []AmountBucket `json:"students_by_course"` // amount=该课程待缴总额
}
