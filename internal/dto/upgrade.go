package dto

// ── 学期升级模块 DTO ──

// EligibilityResponse 单个学生的升级资格
type EligibilityResponse struct {
	StudentID        string `json:"student_id"`
	StudentName      string `json:"student_name"`
	RollNumber       string `json:"roll_number"`
	CourseName       string `json:"course_name,omitempty"`
	CurrentSemester  int    `json:"current_semester"`
	ExpectedSemester int    `json:"expected_semester"`
	MaxSemester      int    `json:"max_semester"`
	Eligible         bool   `json:"eligible"`
	NextSemester     *int   `json:"next_semester,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// EligibilityListRequest 升级资格列表查询
type EligibilityListRequest struct {
	Search       string `form:"search"        binding:"max=100"` // 姓名 / 学号 / 课程名
	OnlyEligible bool   `form:"only_eligible"`
}

// UpgradeRequest 批量升级请求：student_ids 应来自资格列表
type UpgradeRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=500,dive,required"`
}
