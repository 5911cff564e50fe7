package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/divan/num2words"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

var ErrReceiptGenerateFail = errors.New("生成收据失败")

// ReceiptService 收据业务接口
type ReceiptService interface {
	// Receipt 生成缴费收据 PDF
	Receipt(ctx context.Context, paymentID string) (*bytes.Buffer, string, error)
}

type receiptService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	logger *zap.Logger
}

// NewReceiptService 创建 ReceiptService 实例
func NewReceiptService(repo *repository.Repository, cfg *config.FeeConfig, logger *zap.Logger) ReceiptService {
	return &receiptService{repo: repo, cfg: cfg, logger: logger}
}

func (s *receiptService) Receipt(ctx context.Context, paymentID string) (*bytes.Buffer, string, error) {
	payment, err := s.repo.Payment.GetByID(ctx, paymentID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrPaymentNotFound
		}
		s.logger.Error("查询缴费记录失败", zap.String("id", paymentID), zap.Error(err))
		return nil, "", err
	}

	// 学生记录缺失时仍可出具收据，只是缺少学号与课程
	var student *model.Student
	if st, err := s.repo.Student.GetByID(ctx, payment.StudentID.String()); err == nil {
		student = st
	} else if !isNotFound(err) {
		s.logger.Warn("查询收据对应学生失败", zap.String("student_id", payment.StudentID.String()), zap.Error(err))
	}

	buf, err := renderReceipt(s.cfg, payment, student)
	if err != nil {
		s.logger.Error("生成收据 PDF 失败", zap.String("receipt", payment.ReceiptNumber), zap.Error(err))
		return nil, "", ErrReceiptGenerateFail
	}
	return buf, fmt.Sprintf("receipt_%s.pdf", payment.ReceiptNumber), nil
}

// renderReceipt 使用内置 Helvetica 字体，仅输出 Latin-1 文本
func renderReceipt(cfg *config.FeeConfig, p *model.Payment, st *model.Student) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 8, tr(cfg.InstitutionName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "FEE RECEIPT", "", 1, "C", false, 0, "")
	pdf.SetDrawColor(68, 114, 196)
	pdf.SetLineWidth(0.5)
	pdf.Line(12, pdf.GetY()+1, 136, pdf.GetY()+1)
	pdf.Ln(5)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}

	row("Receipt No.:", p.ReceiptNumber)
	row("Date:", p.PaymentDate.String())
	row("Student:", p.StudentName)
	if st != nil {
		row("Roll Number:", st.RollNumber)
		if st.Course != "" {
			row("Course:", st.Course)
		}
	}
	row("Semester:", fmt.Sprintf("%d", p.Semester.Int()))
	row("Payment Method:", string(p.PaymentMethod))
	if p.TransactionID != "" {
		row("Transaction ID:", p.TransactionID)
	}
	if p.ReferenceNumber != "" {
		row("Reference No.:", p.ReferenceNumber)
	}
	if p.BankName != "" {
		row("Bank:", p.BankName)
	}
	row("Status:", string(p.Status))
	pdf.Ln(4)

	pdf.SetFillColor(235, 241, 250)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(40, 9, "Amount", "1", 0, "L", true, 0, "")
	pdf.CellFormat(0, 9, fmt.Sprintf("%s %s", cfg.Currency, p.Amount.String()), "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr(AmountInWords(p.Amount, cfg.Currency)), "", "L", false)

	if p.Remarks != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr("Remarks: "+p.Remarks), "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "This is a computer generated receipt.", "", 1, "C", false, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// AmountInWords 金额英文大写：6000050 → "Sixty thousand INR and fifty paise only"
func AmountInWords(m model.Money, currency string) string {
	words := num2words.Convert(int(m.Major()))
	out := fmt.Sprintf("%s %s", words, currency)
	if minor := m.Minor(); minor > 0 {
		out += fmt.Sprintf(" and %s paise", num2words.Convert(int(minor)))
	}
	if words == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:] + " only"
}
