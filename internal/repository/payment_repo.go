package repository

import (
	"context"
	"net/url"

	"fee-admin/backend/internal/model"
	apperrors "fee-admin/backend/pkg/errors"
	"fee-admin/backend/pkg/resourceapi"
)

// PaymentRepository 缴费流水数据访问接口（只追加）
type PaymentRepository interface {
	List(ctx context.Context) ([]model.Payment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*model.Payment, error)
	Create(ctx context.Context, payment *model.Payment) error
}

type paymentRepo struct {
	api *resourceapi.Client
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(api *resourceapi.Client) PaymentRepository {
	return &paymentRepo{api: api}
}

func (r *paymentRepo) List(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	if err := r.api.List(ctx, resourceapi.Payments, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.api.List(ctx, resourceapi.Payments, url.Values{"studentId": {studentID}}, &payments)
	if err != nil {
		return nil, err
	}
	// 上游按字符串匹配过滤，数字 id 与字符串 id 混存时再校验一次
	filtered := payments[:0]
	for _, p := range payments {
		if p.StudentID.String() == studentID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.api.Get(ctx, resourceapi.Payments, id, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*model.Payment, error) {
	var payments []model.Payment
	err := r.api.List(ctx, resourceapi.Payments, url.Values{"receiptNumber": {receiptNumber}}, &payments)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].ReceiptNumber == receiptNumber {
			return &payments[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.api.Create(ctx, resourceapi.Payments, payment, payment)
}
