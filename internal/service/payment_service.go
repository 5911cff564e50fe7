package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 缴费模块业务错误 ──

var (
	ErrPaymentNotFound         = errors.New("缴费记录不存在")
	ErrPaymentAmountInvalid    = errors.New("缴费金额必须大于0")
	ErrPaymentInvalidDate      = errors.New("缴费日期格式无效")
	ErrPaymentNothingPayable   = errors.New("该学生当前没有应缴分期")
	ErrPaymentWrongSemester    = errors.New("只能缴纳当前应缴学期的费用")
	ErrPaymentExceedsRemaining = errors.New("缴费金额超过该分期剩余应缴金额")
)

// PaymentService 缴费业务接口
type PaymentService interface {
	// Create 录入缴费：任何写入前先校验应缴学期与剩余金额
	Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.CreatePaymentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PaymentResponse, error)
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*dto.PaymentResponse, error)
	List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error)
}

type paymentService struct {
	repo   *repository.Repository
	cfg    *config.FeeConfig
	clock  Clock
	logger *zap.Logger
}

// NewPaymentService 创建 PaymentService 实例
func NewPaymentService(repo *repository.Repository, cfg *config.FeeConfig, clock Clock, logger *zap.Logger) PaymentService {
	return &paymentService{repo: repo, cfg: cfg, clock: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *paymentService) Create(ctx context.Context, req *dto.CreatePaymentRequest, callerID string) (*dto.CreatePaymentResponse, error) {
	// 1. 字段校验
	if req.Amount <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	now := s.clock()
	paymentDate := model.NewDate(now)
	if strings.TrimSpace(req.PaymentDate) != "" {
		d, err := model.ParseDate(req.PaymentDate)
		if err != nil {
			return nil, ErrPaymentInvalidDate
		}
		paymentDate = d
	}
	status := model.PaymentStatus(req.Status)
	if status == "" {
		status = model.PaymentStatusCompleted
	}

	// 2. 学生与其缴费流水
	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}
	payments, err := s.repo.Payment.ListByStudent(ctx, student.ID.String())
	if err != nil {
		s.logger.Error("查询学生缴费记录失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	// 3. 业务规则：按顺序缴费，不得超过剩余金额
	ledger := NewLedger(payments)
	payable, ok := ledger.PayableSemester(student)
	if !ok {
		return nil, ErrPaymentNothingPayable
	}
	if req.Semester != payable {
		return nil, fmt.Errorf("%w：当前应缴第 %d 学期", ErrPaymentWrongSemester, payable)
	}
	fee, _ := student.Installment(payable)
	remaining := ledger.Remaining(student.ID, fee)
	if req.Amount > remaining {
		return nil, fmt.Errorf("%w：剩余 %s", ErrPaymentExceedsRemaining, remaining)
	}

	// 4. 写入流水
	payment := &model.Payment{
		StudentID:       student.ID,
		StudentName:     student.Name,
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		Semester:        model.Ordinal(payable),
		Status:          status,
		ReceiptNumber:   NewReceiptNumber(s.cfg.ReceiptPrefix, now),
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		BankName:        req.BankName,
		Remarks:         req.Remarks,
		RecordedBy:      callerID,
	}
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.logger.Error("写入缴费记录失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("缴费入账",
		zap.String("receipt", payment.ReceiptNumber),
		zap.String("student_id", student.ID.String()),
		zap.Int("semester", payable),
		zap.String("amount", payment.Amount.String()),
		zap.String("status", string(status)),
	)

	resp := &dto.CreatePaymentResponse{Payment: toPaymentResponse(payment), StudentSynced: true}

	// 5. 回写学生汇总字段；流水已入账，回写失败不回滚
	if payment.IsCompleted() {
		refreshPaidFlags(student, NewLedger(append(payments, *payment)))
		if err := s.repo.Student.Patch(ctx, student.ID.String(), model.FeeTotalsPatch(student)); err != nil {
			s.logger.Error("回写学生缴费汇总失败",
				zap.String("student_id", student.ID.String()),
				zap.String("receipt", payment.ReceiptNumber),
				zap.Error(err),
			)
			resp.StudentSynced = false
		}
	}
	return resp, nil
}

// NewReceiptNumber 收据号：<前缀>-YYYYMMDD-8位随机十六进制
func NewReceiptNumber(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "RCP"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// ────────────────────── GetByID ──────────────────────

func (s *paymentService) GetByID(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	payment, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("查询缴费记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*dto.PaymentResponse, error) {
	payment, err := s.repo.Payment.GetByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("按收据号查询失败", zap.String("receipt", receiptNumber), zap.Error(err))
		return nil, err
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *paymentService) List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error) {
	var from, to model.Date
	var err error
	if req.From != "" {
		if from, err = model.ParseDate(req.From); err != nil {
			return nil, 0, ErrPaymentInvalidDate
		}
	}
	if req.To != "" {
		if to, err = model.ParseDate(req.To); err != nil {
			return nil, 0, ErrPaymentInvalidDate
		}
	}

	var payments []model.Payment
	if req.StudentID != "" {
		payments, err = s.repo.Payment.ListByStudent(ctx, req.StudentID)
	} else {
		payments, err = s.repo.Payment.List(ctx)
	}
	if err != nil {
		s.logger.Error("查询缴费列表失败", zap.Error(err))
		return nil, 0, err
	}

	needle := strings.ToLower(strings.TrimSpace(req.Search))
	filtered := payments[:0]
	for _, p := range payments {
		if req.Status != "" && string(p.Status) != req.Status {
			continue
		}
		if req.Method != "" && string(p.PaymentMethod) != req.Method {
			continue
		}
		if !from.IsZero() && p.PaymentDate.Before(from.Time) {
			continue
		}
		if !to.IsZero() && p.PaymentDate.After(to.Time) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.ReceiptNumber), needle) &&
			!strings.Contains(strings.ToLower(p.StudentName), needle) {
			continue
		}
		filtered = append(filtered, p)
	}

	// 最新在前
	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].PaymentDate.Equal(filtered[j].PaymentDate.Time) {
			return filtered[i].PaymentDate.After(filtered[j].PaymentDate.Time)
		}
		return filtered[i].ReceiptNumber > filtered[j].ReceiptNumber
	})

	start, end := req.Window(len(filtered))
	result := make([]dto.PaymentResponse, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, toPaymentResponse(&filtered[i]))
	}
	return result, int64(len(filtered)), nil
}
