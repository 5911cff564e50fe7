package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fee-admin/backend/config"
	"fee-admin/backend/internal/api/handler"
	"fee-admin/backend/internal/api/middleware"
	"fee-admin/backend/internal/model"
	"fee-admin/backend/pkg/jwt"
	"fee-admin/backend/pkg/redis"
)

// 登录限流：每个 IP 每分钟 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "redis": rdb != nil}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"] = "degraded"
			status["database"] = false
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = true
		c.JSON(http.StatusOK, status)
	})

	staff := middleware.RoleAuth(model.RoleAdmin, model.RoleAccountant)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow, logger), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger), staff)
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", adminOnly, h.Course.CreateCourse)
				courses.PUT("/:id", adminOnly, h.Course.UpdateCourse)
				courses.DELETE("/:id", adminOnly, h.Course.DeleteCourse)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.POST("", h.Student.AdmitStudent)
				students.POST("/import", adminOnly, h.Student.ImportStudents)
				students.POST("/bulk-delete", adminOnly, h.Student.BulkDeleteStudents)
				students.GET("/:id", h.Student.GetStudent)
				students.GET("/:id/ledger", h.Student.GetLedger)
				students.PUT("/:id", h.Student.UpdateStudent)
				students.DELETE("/:id", adminOnly, h.Student.DeleteStudent)
			}

			// 缴费模块（流水只追加，不提供修改与删除）
			payments := authorized.Group("/payments")
			{
				payments.GET("", h.Payment.ListPayments)
				payments.POST("", h.Payment.CreatePayment)
				payments.GET("/receipt/:number", h.Payment.GetByReceipt)
				payments.GET("/:id", h.Payment.GetPayment)
				payments.GET("/:id/receipt", h.Payment.DownloadReceipt)
			}

			// 待缴费
			authorized.GET("/due-payments", h.DuePayment.ListDuePayments)

			// 学期升级
			upgrades := authorized.Group("/upgrades")
			{
				upgrades.GET("/eligible", h.Upgrade.ListEligibility)
				upgrades.POST("", adminOnly, h.Upgrade.UpgradeStudents)
			}

			// 批量操作审计
			batchOps := authorized.Group("/batch-operations")
			{
				batchOps.GET("", h.BatchOperation.ListBatchOperations)
				batchOps.GET("/:id", h.BatchOperation.GetBatchOperation)
			}

			// 报表
			authorized.GET("/reports/summary", h.Report.Summary)

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/students", h.Export.ExportStudents)
				export.GET("/payments", h.Export.ExportPayments)
				export.GET("/due-payments", h.Export.ExportDuePayments)
			}
		}
	}

	return r
}
