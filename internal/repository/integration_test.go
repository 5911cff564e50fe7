//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fee-admin/backend/internal/model"
	"fee-admin/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=fee_admin password=fee_admin_password dbname=fee_admin_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.BatchOperation{}, &model.BatchOperationItem{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// ═══════════════════════════════════════════════════════════
// Test: BatchOperation
// ═══════════════════════════════════════════════════════════

func TestBatchOperation_CreateAndGet(t *testing.T) {
	repo := repository.NewBatchOperationRepo(testDB)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	op := &model.BatchOperation{
		Kind:       model.BatchKindSemesterUpgrade,
		OperatorID: fmt.Sprintf("op-%d", time.Now().UnixNano()),
		Total:      3,
		Succeeded:  2,
		Failed:     1,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Items: []model.BatchOperationItem{
			{TargetID: "1", Success: true},
			{TargetID: "2", Success: false, Detail: "资源 API 请求失败"},
			{TargetID: "3", Success: true},
		},
	}
	if err := repo.Create(ctx, op); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	defer func() {
		testDB.Where("batch_id = ?", op.BatchID).Delete(&model.BatchOperationItem{})
		testDB.Where("batch_id = ?", op.BatchID).Delete(&model.BatchOperation{})
	}()

	if op.BatchID == "" {
		t.Fatal("BatchID 应由数据库生成")
	}

	got, err := repo.GetByID(ctx, op.BatchID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if len(got.Items) != 3 {
		t.Errorf("期望3个单项，实际=%d", len(got.Items))
	}
	if got.Failed != 1 || got.Succeeded != 2 {
		t.Errorf("汇总不符: %+v", got)
	}

	ops, total, err := repo.List(ctx, model.BatchKindSemesterUpgrade, 0, 10)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total < 1 || len(ops) < 1 {
		t.Errorf("期望至少1条记录，实际 total=%d len=%d", total, len(ops))
	}
}

func TestBatchOperation_GetByID_NotFound(t *testing.T) {
	repo := repository.NewBatchOperationRepo(testDB)
	_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}
