package model

// 学生状态
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// SemesterFee 学期分期（嵌入在学生记录中）
// Paid 仅作展示，是否付清始终以缴费流水重新计算
type SemesterFee struct {
	Semester Ordinal `json:"semester"`
	Amount   Money   `json:"amount"`
	DueDate  Date    `json:"dueDate"`
	Paid     bool    `json:"paid"`
}

// Student 学生（资源 API /students）
type Student struct {
	ID            ID            `json:"id,omitempty"`
	Name          string        `json:"name"`
	RollNumber    string        `json:"rollNumber"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	GuardianName  string        `json:"guardianName,omitempty"`
	Address       string        `json:"address,omitempty"`
	CourseID      ID            `json:"courseId"`
	Course        string        `json:"course,omitempty"` // 课程名称冗余，便于列表展示与搜索
	Semester      Ordinal       `json:"semester"`
	AdmissionDate Date          `json:"admissionDate"`
	TotalFees     Money         `json:"totalFees"`
	PaidFees      Money         `json:"paidFees"`
	PendingFees   Money         `json:"pendingFees"`
	SemesterFees  []SemesterFee `json:"semesterFees"`
	Status        string        `json:"status,omitempty"`
}

// Installment 返回指定学期的分期
func (s *Student) Installment(semester int) (SemesterFee, bool) {
	for _, fee := range s.SemesterFees {
		if fee.Semester.Int() == semester {
			return fee, true
		}
	}
	return SemesterFee{}, false
}

// ApplyPaid 更新已缴总额并同步待缴金额，保持 paid + pending == total
func (s *Student) ApplyPaid(paid Money) {
	s.PaidFees = paid
	s.PendingFees = s.TotalFees - paid
}

// StudentPatch 学生记录的局部更新（PATCH /students/:id）
// 只序列化非 nil 字段，面板写入而本服务未声明的字段由资源 API 原样保留
type StudentPatch struct {
	Name         *string       `json:"name,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	GuardianName *string       `json:"guardianName,omitempty"`
	Address      *string       `json:"address,omitempty"`
	Status       *string       `json:"status,omitempty"`
	Semester     *Ordinal      `json:"semester,omitempty"`
	PaidFees     *Money        `json:"paidFees,omitempty"`
	PendingFees  *Money        `json:"pendingFees,omitempty"`
	SemesterFees []SemesterFee `json:"semesterFees,omitempty"`
}

// FeeTotalsPatch 缴费回写：已缴 / 待缴与分期付清标记
func FeeTotalsPatch(s *Student) *StudentPatch {
	paid, pending := s.PaidFees, s.PendingFees
	return &StudentPatch{
		PaidFees:     &paid,
		PendingFees:  &pending,
		SemesterFees: append([]SemesterFee(nil), s.SemesterFees...),
	}
}

// ApplyTo 将补丁合并到本地记录
func (p *StudentPatch) ApplyTo(s *Student) {
	setString(&s.Name, p.Name)
	setString(&s.Email, p.Email)
	setString(&s.Phone, p.Phone)
	setString(&s.GuardianName, p.GuardianName)
	setString(&s.Address, p.Address)
	setString(&s.Status, p.Status)
	if p.Semester != nil {
		s.Semester = *p.Semester
	}
	if p.PaidFees != nil {
		s.PaidFees = *p.PaidFees
	}
	if p.PendingFees != nil {
		s.PendingFees = *p.PendingFees
	}
	if p.SemesterFees != nil {
		s.SemesterFees = append([]SemesterFee(nil), p.SemesterFees...)
	}
}

// Empty 没有任何待写字段
func (p *StudentPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.GuardianName == nil &&
		p.Address == nil && p.Status == nil && p.Semester == nil &&
		p.PaidFees == nil && p.PendingFees == nil && p.SemesterFees == nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
