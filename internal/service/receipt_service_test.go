package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"fee-admin/backend/internal/model"
)

func TestReceiptService_Receipt(t *testing.T) {
	r := newTestRepos()
	r.students = newMockStudentRepo(studentWithPlan("1", 1, "2025-01-01"))
	r.repo.Student = r.students
	p := paymentOn("1", 1, rupees(60000)+50, "2026-03-02", model.PaymentMethodCash, model.PaymentStatusCompleted)
	p.ID = "p1"
	p.StudentName = "Student 1"
	p.ReceiptNumber = "RCP-20260302-0A1B2C3D"
	p.Remarks = "First installment"
	orphan := paymentOn("ghost", 1, rupees(100), "2026-03-02", model.PaymentMethodOnline, model.PaymentStatusCompleted)
	orphan.ID = "p2"
	orphan.ReceiptNumber = "RCP-20260302-FFFFFFFF"
	r.payments = newMockPaymentRepo(p, orphan)
	r.repo.Payment = r.payments

	svc := NewReceiptService(r.repo, testFeeConfig(), zap.NewNop())
	ctx := context.Background()

	buf, filename, err := svc.Receipt(ctx, "p1")
	if err != nil {
		t.Fatalf("Receipt 应成功: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("输出应为 PDF 文档")
	}
	if filename != "receipt_RCP-20260302-0A1B2C3D.pdf" {
		t.Errorf("文件名不符: %s", filename)
	}

	if _, _, err := svc.Receipt(ctx, "p2"); err != nil {
		t.Errorf("学生记录缺失时仍应出具收据: %v", err)
	}
	if _, _, err := svc.Receipt(ctx, "missing"); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("期望 ErrPaymentNotFound，实际: %v", err)
	}
}

func TestAmountInWords(t *testing.T) {
	got := AmountInWords(rupees(60000)+50, "INR")
	if !strings.HasPrefix(got, "Sixty thousand INR") {
		t.Errorf("主单位部分不符: %q", got)
	}
	if !strings.HasSuffix(got, "and fifty paise only") {
		t.Errorf("辅币部分不符: %q", got)
	}

	if got := AmountInWords(rupees(1200), "INR"); strings.Contains(got, "paise") {
		t.Errorf("整数金额不应出现辅币: %q", got)
	}
}
