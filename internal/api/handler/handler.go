package handler

import "fee-admin/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	Course         *CourseHandler
	Student        *StudentHandler
	Payment        *PaymentHandler
	DuePayment     *DuePaymentHandler
	Upgrade        *UpgradeHandler
	BatchOperation *BatchOperationHandler
	Report         *ReportHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		Course:         NewCourseHandler(svc.Course),
		Student:        NewStudentHandler(svc.Student),
		Payment:        NewPaymentHandler(svc.Payment, svc.Receipt),
		DuePayment:     NewDuePaymentHandler(svc.DuePayment),
		Upgrade:        NewUpgradeHandler(svc.Upgrade),
		BatchOperation: NewBatchOperationHandler(svc.BatchOperation),
		Report:         NewReportHandler(svc.Report),
		Export:         NewExportHandler(svc.Export),
	}
}
