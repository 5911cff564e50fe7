package repository

import (
	"context"

	"gorm.io/gorm"

	"fee-admin/backend/internal/model"
)

// BatchOperationRepository 批量操作审计数据访问接口
type BatchOperationRepository interface {
	// Create 在同一事务内写入汇总与全部单项
	Create(ctx context.Context, op *model.BatchOperation) error
	GetByID(ctx context.Context, id string) (*model.BatchOperation, error)
	List(ctx context.Context, kind string, offset, limit int) ([]model.BatchOperation, int64, error)
}

type batchOperationRepo struct {
	db *gorm.DB
}

// NewBatchOperationRepo 创建 BatchOperationRepository 实例
func NewBatchOperationRepo(db *gorm.DB) BatchOperationRepository {
	return &batchOperationRepo{db: db}
}

func (r *batchOperationRepo) Create(ctx context.Context, op *model.BatchOperation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := op.Items
		op.Items = nil
		if err := tx.Create(op).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].BatchID = op.BatchID
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, 200).Error; err != nil {
				return err
			}
		}
		op.Items = items
		return nil
	})
}

func (r *batchOperationRepo) GetByID(ctx context.Context, id string) (*model.BatchOperation, error) {
	var op model.BatchOperation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("batch_id = ?", id).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *batchOperationRepo) List(ctx context.Context, kind string, offset, limit int) ([]model.BatchOperation, int64, error) {
	var ops []model.BatchOperation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.BatchOperation{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&ops).Error
	if err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}
