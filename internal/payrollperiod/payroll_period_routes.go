package payrollperiod

import (
	"go-erp/internal/middleware"
	"go-erp/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	periods := r.Group("/hrm/payroll-periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, "payroll-period", "read"), handler.GetAll)
		periods.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll-period", "read"), handler.GetById)
		if redisClient != nil {
			periods.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll-period", "create"),
				handler.Create,
			)
		} else {
			periods.POST("", middleware.RBACAuthorize(rbacService, "payroll-period", "create"), handler.Create)
		}
		periods.PUT("/:id", middleware.RBACAuthorize(rbacService, "payroll-period", "update"), handler.Update)
		periods.POST("/:id/process", middleware.RBACAuthorize(rbacService, "payroll-period", "update"), handler.MarkProcessed)
		periods.POST("/:id/close", middleware.RBACAuthorize(rbacService, "payroll-period", "close"), handler.Close)
		periods.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll-period", "delete"), handler.Delete)
	}
}
