package payrollevidence

import (
	"go-erp/internal/middleware"
	"go-erp/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes menempel pada grup run karena evidence dan payslip selalu
// beralamat per baris run.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	runs := r.Group("/hrm/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET(
			"/:id/evidence/:employeeId",
			middleware.RBACAuthorize(rbacService, "payroll-run", "read"),
			handler.GetEvidence,
		)
		runs.GET(
			"/:id/payslip/:employeeId/download",
			middleware.RBACAuthorize(rbacService, "payroll-run", "read"),
			handler.DownloadPayslip,
		)
	}
}
