package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/repository"
	"fee-admin/backend/pkg/jwt"
)

// Clock 当前时间来源；测试中注入固定时间
type Clock func() time.Time

// TokenStore Token 黑名单，由 *redis.Client 实现；Redis 不可用时为 nil
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth           AuthService
	Course         CourseService
	Student        StudentService
	Payment        PaymentService
	DuePayment     DuePaymentService
	Upgrade        UpgradeService
	BatchOperation BatchOperationService
	Report         ReportService
	Export         ExportService
	Receipt        ReceiptService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	clock Clock,
	logger *zap.Logger,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	batch := newBatchRunner(repo.BatchOperation, cfg.Batch.Concurrency, clock, logger)
	due := NewDuePaymentService(repo, &cfg.Fee, clock, logger)

	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Course:         NewCourseService(repo, logger),
		Student:        NewStudentService(repo, &cfg.Fee, batch, clock, logger),
		Payment:        NewPaymentService(repo, &cfg.Fee, clock, logger),
		DuePayment:     due,
		Upgrade:        NewUpgradeService(repo, &cfg.Fee, batch, clock, logger),
		BatchOperation: NewBatchOperationService(repo, logger),
		Report:         NewReportService(repo, &cfg.Fee, clock, logger),
		Export:         NewExportService(repo, due, clock, logger),
		Receipt:        NewReceiptService(repo, &cfg.Fee, logger),
	}
}
