package service

import (
	"time"

	"fee-admin/backend/internal/model"
)

// 以下函数都是纯函数：输入为学生记录与缴费流水，不访问任何外部资源，
// 多次调用结果一致。分期是否付清始终由缴费流水重新计算，
// 学生记录中的 paid 标记与 paidFees 只作展示。

// 不可升级原因
const (
	ReasonNotYetTime       = "Not yet time"
	ReasonPendingFees      = "Pending fees"
	ReasonFinalSemester    = "Final semester"
	ReasonIncompleteRecord = "Incomplete record"
)

// ── 缴费台账 ──

// Ledger 按 学生 × 学期 汇总的已完成缴费金额
type Ledger struct {
	paid map[model.ID]map[int]model.Money
}

// NewLedger 汇总缴费流水；只有 Completed 计入
func NewLedger(payments []model.Payment) *Ledger {
	l := &Ledger{paid: make(map[model.ID]map[int]model.Money)}
	for i := range payments {
		p := &payments[i]
		if !p.IsCompleted() {
			continue
		}
		bySem, ok := l.paid[p.StudentID]
		if !ok {
			bySem = make(map[int]model.Money)
			l.paid[p.StudentID] = bySem
		}
		bySem[p.Semester.Int()] += p.Amount
	}
	return l
}

// Paid 某学生某学期已缴金额
func (l *Ledger) Paid(studentID model.ID, semester int) model.Money {
	return l.paid[studentID][semester]
}

// TotalPaid 某学生全部学期已缴金额
func (l *Ledger) TotalPaid(studentID model.ID) model.Money {
	var total model.Money
	for _, amount := range l.paid[studentID] {
		total += amount
	}
	return total
}

// Settled 分期是否已付清
func (l *Ledger) Settled(studentID model.ID, fee model.SemesterFee) bool {
	return l.Paid(studentID, fee.Semester.Int()) >= fee.Amount
}

// ── 应缴学期 ──

// PayableSemester 返回学生当前应缴的学期：1..当前学期 中第一个未付清的分期。
// 没有分期计划、学期号缺失或全部付清时返回 false。
// 早于当前学期的欠费会阻塞后续学期，保证按顺序缴费。
func PayableSemester(student *model.Student, payments []model.Payment) (int, bool) {
	return NewLedger(payments).PayableSemester(student)
}

// PayableSemester 同包级函数，复用已汇总的台账
func (l *Ledger) PayableSemester(student *model.Student) (int, bool) {
	current := student.Semester.Int()
	if current < 1 || len(student.SemesterFees) == 0 {
		return 0, false
	}
	for sem := 1; sem <= current; sem++ {
		fee, ok := student.Installment(sem)
		if !ok {
			continue
		}
		if !l.Settled(student.ID, fee) {
			return sem, true
		}
	}
	return 0, false
}

// Remaining 分期剩余应缴金额，不小于 0
func (l *Ledger) Remaining(studentID model.ID, fee model.SemesterFee) model.Money {
	return (fee.Amount - l.Paid(studentID, fee.Semester.Int())).NonNegative()
}

// ── 升级资格 ──

// UpgradeEligibility 升级资格判定结果
type UpgradeEligibility struct {
	Eligible             bool
	Reason               string // 不可升级时的首个原因
	CurrentSemester      int
	ExpectedSemester     int
	MaxSemester          int
	MonthsSinceAdmission int
	NextSemester         int // 仅 Eligible 时有效
}

// MonthsBetween 两个日期之间的整月数（只看年月，不看日）
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// ExpectedSemester 按入学时长推算的应在学期：floor(months / monthsPerSemester) + 1
func ExpectedSemester(months, monthsPerSemester int) int {
	if monthsPerSemester <= 0 {
		monthsPerSemester = 6
	}
	q := months / monthsPerSemester
	if months%monthsPerSemester != 0 && months < 0 {
		q--
	}
	return q + 1
}

// CheckUpgradeEligibility 判断学生能否升入下一学期，需同时满足：
//   - 时间：应在学期 > 当前学期
//   - 缴费：pendingFees <= 0（缺失或负数按 0 处理）
//   - 上限：当前学期 < maxSemester
//
// 多个条件不满足时按 时间 → 缴费 → 上限 的顺序报告第一个。
func CheckUpgradeEligibility(student *model.Student, now time.Time, maxSemester, monthsPerSemester int) UpgradeEligibility {
	current := student.Semester.Int()
	res := UpgradeEligibility{
		CurrentSemester: current,
		MaxSemester:     maxSemester,
	}
	if current < 1 || student.AdmissionDate.IsZero() {
		res.Reason = ReasonIncompleteRecord
		return res
	}

	res.MonthsSinceAdmission = MonthsBetween(student.AdmissionDate.Time, now)
	res.ExpectedSemester = ExpectedSemester(res.MonthsSinceAdmission, monthsPerSemester)

	timeOK := res.ExpectedSemester > current
	paymentOK := student.PendingFees.NonNegative() == 0
	notFinal := current < maxSemester

	switch {
	case !timeOK:
		res.Reason = ReasonNotYetTime
	case !paymentOK:
		res.Reason = ReasonPendingFees
	case !notFinal:
		res.Reason = ReasonFinalSemester
	default:
		res.Eligible = true
		res.NextSemester = current + 1
	}
	return res
}

// MaxSemesterFor 课程学期数已知时以课程为准，否则使用默认上限
func MaxSemesterFor(course *model.Course, defaultMax int) int {
	if course != nil && course.TotalSemesters.Int() > 0 {
		return course.TotalSemesters.Int()
	}
	return defaultMax
}
