package service

import (
	"errors"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	apperrors "fee-admin/backend/pkg/errors"
)

// isNotFound 资源 API 返回 404
func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func toStudentResponse(s *model.Student, courseName string) dto.StudentResponse {
	if courseName == "" {
		courseName = s.Course
	}
	fees := make([]dto.SemesterFeeResponse, 0, len(s.SemesterFees))
	for _, f := range s.SemesterFees {
		fees = append(fees, dto.SemesterFeeResponse{
			Semester: f.Semester.Int(),
			Amount:   f.Amount,
			DueDate:  f.DueDate.String(),
			Paid:     f.Paid,
		})
	}
	status := s.Status
	if status == "" {
		status = model.StudentStatusActive
	}
	return dto.StudentResponse{
		ID:            s.ID.String(),
		Name:          s.Name,
		RollNumber:    s.RollNumber,
		Email:         s.Email,
		Phone:         s.Phone,
		GuardianName:  s.GuardianName,
		Address:       s.Address,
		CourseID:      s.CourseID.String(),
		CourseName:    courseName,
		Semester:      s.Semester.Int(),
		AdmissionDate: s.AdmissionDate.String(),
		TotalFees:     s.TotalFees,
		PaidFees:      s.PaidFees,
		PendingFees:   s.PendingFees,
		Status:        status,
		SemesterFees:  fees,
	}
}

func toPaymentResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:              p.ID.String(),
		StudentID:       p.StudentID.String(),
		StudentName:     p.StudentName,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate.String(),
		PaymentMethod:   string(p.PaymentMethod),
		Semester:        p.Semester.Int(),
		Status:          string(p.Status),
		ReceiptNumber:   p.ReceiptNumber,
		TransactionID:   p.TransactionID,
		ReferenceNumber: p.ReferenceNumber,
		BankName:        p.BankName,
		Remarks:         p.Remarks,
	}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Department:     c.Department,
		TotalSemesters: c.TotalSemesters.Int(),
		TotalFees:      c.TotalFees,
		SemesterFees:   c.PerSemesterFee(),
		Description:    c.Description,
	}
}

func toEligibilityResponse(s *model.Student, courseName string, e UpgradeEligibility) dto.EligibilityResponse {
	resp := dto.EligibilityResponse{
		StudentID:        s.ID.String(),
		StudentName:      s.Name,
		RollNumber:       s.RollNumber,
		CourseName:       courseName,
		CurrentSemester:  e.CurrentSemester,
		ExpectedSemester: e.ExpectedSemester,
		MaxSemester:      e.MaxSemester,
		Eligible:         e.Eligible,
		Reason:           e.Reason,
	}
	if e.Eligible {
		next := e.NextSemester
		resp.NextSemester = &next
	}
	return resp
}
