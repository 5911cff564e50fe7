package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fee-admin/backend/internal/dto"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ── 批量操作 ──
//
// 每个单项是一次独立的上游写入：不回滚，失败不取消其他单项。
// 单项使用与客户端连接解耦的 context，请求断开后已开始的单项仍会完成。
// 结束后写入一条审计记录。

var ErrBatchOperationNotFound = errors.New("批量操作记录不存在")

type batchItemFunc func(ctx context.Context, id string) error

type batchRunner struct {
	audit       repository.BatchOperationRepository
	concurrency int
	clock       Clock
	logger      *zap.Logger
}

func newBatchRunner(audit repository.BatchOperationRepository, concurrency int, clock Clock, logger *zap.Logger) *batchRunner {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &batchRunner{audit: audit, concurrency: concurrency, clock: clock, logger: logger}
}

// Run 并发执行 fn，结果顺序与 ids 一致
func (b *batchRunner) Run(ctx context.Context, kind, operatorID string, ids []string, fn batchItemFunc) *dto.BatchResult {
	started := b.clock()
	itemCtx := context.WithoutCancel(ctx)

	items := make([]dto.BatchItemResult, len(ids))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			items[i] = dto.BatchItemResult{ID: id, Success: true}
			if err := fn(itemCtx, id); err != nil {
				items[i].Success = false
				items[i].Error = err.Error()
				b.logger.Warn("批量操作单项失败",
					zap.String("kind", kind),
					zap.String("id", id),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := summarizeBatch(kind, items)
	b.record(itemCtx, operatorID, started, result)
	return result
}

func summarizeBatch(kind string, items []dto.BatchItemResult) *dto.BatchResult {
	res := &dto.BatchResult{Kind: kind, Total: len(items), Items: items}
	for _, it := range items {
		if it.Success {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	res.Success = res.Failed == 0
	return res
}

// record 写审计记录；失败只记日志，不影响已完成的批量结果
func (b *batchRunner) record(ctx context.Context, operatorID string, started time.Time, res *dto.BatchResult) {
	if b.audit == nil {
		return
	}
	op := &model.BatchOperation{
		BatchID:    uuid.NewString(),
		Kind:       res.Kind,
		OperatorID: operatorID,
		Total:      res.Total,
		Succeeded:  res.Succeeded,
		Failed:     res.Failed,
		StartedAt:  started,
		FinishedAt: b.clock(),
		Items:      make([]model.BatchOperationItem, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		op.Items = append(op.Items, model.BatchOperationItem{
			ItemID:   uuid.NewString(),
			TargetID: it.ID,
			Success:  it.Success,
			Detail:   truncate(it.Error, 500),
		})
	}
	if err := b.audit.Create(ctx, op); err != nil {
		b.logger.Error("写入批量操作审计失败", zap.String("kind", res.Kind), zap.Error(err))
		return
	}
	res.BatchID = op.BatchID
}

// dedupeIDs 去重并保持原有顺序；同一学生在一个批次中只处理一次
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ────────────────────── 审计查询 ──────────────────────

// BatchOperationService 批量操作审计查询接口
type BatchOperationService interface {
	List(ctx context.Context, req *dto.BatchOperationListRequest) ([]model.BatchOperation, int64, error)
	GetByID(ctx context.Context, id string) (*model.BatchOperation, error)
}

type batchOperationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBatchOperationService 创建 BatchOperationService 实例
func NewBatchOperationService(repo *repository.Repository, logger *zap.Logger) BatchOperationService {
	return &batchOperationService{repo: repo, logger: logger}
}

func (s *batchOperationService) List(ctx context.Context, req *dto.BatchOperationListRequest) ([]model.BatchOperation, int64, error) {
	ops, total, err := s.repo.BatchOperation.List(ctx, req.Kind, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询批量操作审计失败", zap.Error(err))
		return nil, 0, err
	}
	return ops, total, nil
}

func (s *batchOperationService) GetByID(ctx context.Context, id string) (*model.BatchOperation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBatchOperationNotFound
	}
	op, err := s.repo.BatchOperation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchOperationNotFound
		}
		s.logger.Error("查询批量操作审计失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return op, nil
}
