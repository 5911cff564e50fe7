package repository

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fee-admin/backend/pkg/resourceapi"
)

// Repository 所有 Repository 的聚合入口
//
// 学生、缴费、课程、用户四个集合由外部资源 API 持有；
// 批量操作审计记录存放在本服务自己的 PostgreSQL 中。
type Repository struct {
	Student        StudentRepository
	Payment        PaymentRepository
	Course         CourseRepository
	User           UserRepository
	BatchOperation BatchOperationRepository
}

// NewRepository 创建 Repository 聚合；cache 为 nil 时学生集合不做缓存
func NewRepository(api *resourceapi.Client, db *gorm.DB, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Repository {
	var students StudentRepository = NewStudentRepo(api)
	if cache != nil {
		students = NewCachedStudentRepo(students, cache, cacheTTL, logger)
	}

	return &Repository{
		Student:        students,
		Payment:        NewPaymentRepo(api),
		Course:         NewCourseRepo(api),
		User:           NewUserRepo(api),
		BatchOperation: NewBatchOperationRepo(db),
	}
}
