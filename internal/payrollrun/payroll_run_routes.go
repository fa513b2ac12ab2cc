package payrollrun

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

	runs := r.Group("/hrm/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll-run", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll-run", "read"), handler.GetById)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll-run", "create"),
				handler.Create,
			)
			runs.POST(
				"/:id/post",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll-run", "post"),
				handler.Post,
			)
		} else {
			runs.POST("", middleware.RBACAuthorize(rbacService, "payroll-run", "create"), handler.Create)
			runs.POST("/:id/post", middleware.RBACAuthorize(rbacService, "payroll-run", "post"), handler.Post)
		}
		runs.POST("/:id/calculate", middleware.RBACAuthorize(rbacService, "payroll-run", "update"), handler.Calculate)
		runs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll-run", "delete"), handler.Delete)

		runs.POST("/:id/lines", middleware.RBACAuthorize(rbacService, "payroll-run", "update"), handler.CreateLine)
		runs.PUT("/:id/lines/:lineId", middleware.RBACAuthorize(rbacService, "payroll-run", "update"), handler.UpdateLine)
		runs.DELETE("/:id/lines/:lineId", middleware.RBACAuthorize(rbacService, "payroll-run", "update"), handler.DeleteLine)
	}
}
