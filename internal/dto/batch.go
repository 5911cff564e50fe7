package dto

// ── 批量操作 DTO ──

// BatchItemResult 批量操作单项结果
type BatchItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult 批量操作汇总：success 仅在全部单项成功时为 true
type BatchResult struct {
	BatchID   string            `json:"batch_id,omitempty"`
	Kind      string            `json:"kind"`
	Success   bool              `json:"success"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// BatchOperationListRequest 批量操作审计查询
type BatchOperationListRequest struct {
	PaginationRequest
	Kind string `form:"kind" binding:"omitempty,oneof=semester_upgrade student_delete student_import"`
}

// ImportRowError 导入文件解析阶段的行级错误
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportStudentResponse 学生导入结果
type ImportStudentResponse struct {
	RowErrors []ImportRowError `json:"row_errors,omitempty"`
	Batch     *BatchResult     `json:"batch,omitempty"`
}
