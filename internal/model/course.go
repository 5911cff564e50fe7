package model

// Course 课程（资源 API /courses）
type Course struct {
	ID             ID      `json:"id,omitempty"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	TotalSemesters Ordinal `json:"totalSemesters"`
	TotalFees      Money   `json:"totalFees"`
	SemesterFees   *Money  `json:"semesterFees,omitempty"` // 缺省时按 totalFees / totalSemesters 推导
	Description    string  `json:"description,omitempty"`
}

// PerSemesterFee 每学期学费；未显式配置时平均分摊（向下取整到分）
func (c *Course) PerSemesterFee() Money {
	if c.SemesterFees != nil && *c.SemesterFees > 0 {
		return *c.SemesterFees
	}
	if c.TotalSemesters <= 0 {
		return 0
	}
	return c.TotalFees / Money(c.TotalSemesters)
}
