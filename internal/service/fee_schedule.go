package service

import "fee-admin/backend/internal/model"

// BuildInstallments 入学时生成完整分期计划：
// 期数 = 课程学期数，每期金额 = 课程每学期学费，
// 未显式配置每学期学费时平均分摊的余数计入最后一期，
// 第 k 期截止日 = 入学日 + monthsPerSemester·(k−1) 个月。
func BuildInstallments(course *model.Course, admission model.Date, monthsPerSemester int) []model.SemesterFee {
	n := course.TotalSemesters.Int()
	if n <= 0 {
		return nil
	}
	per := course.PerSemesterFee()
	explicit := course.SemesterFees != nil && *course.SemesterFees > 0

	fees := make([]model.SemesterFee, 0, n)
	for k := 1; k <= n; k++ {
		amount := per
		if !explicit && k == n {
			amount = course.TotalFees - per*model.Money(n-1)
		}
		fees = append(fees, model.SemesterFee{
			Semester: model.Ordinal(k),
			Amount:   amount,
			DueDate:  admission.AddMonths(monthsPerSemester * (k - 1)),
		})
	}
	return fees
}

// SumInstallments 分期总额
func SumInstallments(fees []model.SemesterFee) model.Money {
	var total model.Money
	for _, f := range fees {
		total += f.Amount
	}
	return total
}

// refreshPaidFlags 按台账刷新展示用的 paid 标记，并重算已缴 / 待缴汇总
func refreshPaidFlags(student *model.Student, ledger *Ledger) {
	for i := range student.SemesterFees {
		student.SemesterFees[i].Paid = ledger.Settled(student.ID, student.SemesterFees[i])
	}
	student.ApplyPaid(ledger.TotalPaid(student.ID))
}
