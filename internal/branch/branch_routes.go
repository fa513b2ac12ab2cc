package branch

import (
	"go-erp/internal/middleware"
	"go-erp/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	branches := r.Group("/branches")
	branches.Use(middleware.AuthMiddleware())
	{
		branches.GET("", middleware.RBACAuthorize(rbacService, "branch", "read"), handler.GetAll)
		branches.GET("/:id", middleware.RBACAuthorize(rbacService, "branch", "read"), handler.GetById)
		branches.POST("", middleware.RBACAuthorize(rbacService, "branch", "create"), handler.Create)
		branches.PUT("/:id", middleware.RBACAuthorize(rbacService, "branch", "update"), handler.Update)
		branches.DELETE("/:id", middleware.RBACAuthorize(rbacService, "branch", "delete"), handler.Delete)
	}
}
