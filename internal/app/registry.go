package app

import (
	"context"
	"database/sql"
	"path/filepath"

	"go-erp/internal/attendance"
	"go-erp/internal/auth"
	"go-erp/internal/branch"
	"go-erp/internal/employee"
	"go-erp/internal/employeesalary"
	"go-erp/internal/leave"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/notification"
	"go-erp/internal/payrollevidence"
	"go-erp/internal/payrollperiod"
	"go-erp/internal/payrollrun"
	"go-erp/internal/rbac"
	"go-erp/internal/rbac/infra"
	"go-erp/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	branchRepo := branch.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeSalaryRepo := employeesalary.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollEvidenceRepo := payrollevidence.NewRepository(gormDB)
	payrollPeriodRepo := payrollperiod.NewRepository(gormDB)
	payrollRunRepo := payrollrun.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Notifications ---
	notifier := notification.NewRedisPublisher(rdb)
	hub := notification.NewHub()
	subscriber := notification.NewSubscriber(rdb, hub)
	go func() {
		if err := subscriber.Run(context.Background()); err != nil && err != context.Canceled {
			logger.Error("notification subscriber stopped", zap.Error(err))
		}
	}()

	// --- Services ---
	payrollPolicy := payrollevidence.PolicyFromEnv()

	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	attendanceService := attendance.NewService(db, attendanceRepo)
	branchService := branch.NewService(db, branchRepo)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb)
	employeeSalaryService := employeesalary.NewService(db, employeeSalaryRepo)
	leaveService := leave.NewService(db, leaveRepo)
	payrollEvidenceService := payrollevidence.NewService(payrollEvidenceRepo, payrollPolicy)
	payrollPeriodService := payrollperiod.NewService(db, payrollPeriodRepo, notifier)
	payrollRunService := payrollrun.NewService(
		db,
		payrollRunRepo,
		attendanceRepo,
		leaveRepo,
		employeeSalaryRepo,
		counterRepo,
		outboxRepo,
		notifier,
		payrollPolicy,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	branchHandler := branch.NewHandler(branchService)
	employeeHandler := employee.NewHandler(employeeService)
	employeeSalaryHandler := employeesalary.NewHandler(employeeSalaryService)
	leaveHandler := leave.NewHandler(leaveService)
	notificationHandler := notification.NewHandler(hub)
	payrollEvidenceHandler := payrollevidence.NewHandler(payrollEvidenceService)
	payrollPeriodHandler := payrollperiod.NewHandler(payrollPeriodService)
	payrollRunHandler := payrollrun.NewHandler(payrollRunService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		branch.RegisterRoutes(api, branchHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		employeesalary.RegisterRoutes(api, employeeSalaryHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler)
		payrollperiod.RegisterRoutes(api, payrollPeriodHandler, rbacService, rdb)
		payrollrun.RegisterRoutes(api, payrollRunHandler, rbacService, rdb)
		payrollevidence.RegisterRoutes(api, payrollEvidenceHandler, rbacService)
	}

	rbac.RegisterRoutes(router, rbacHandler, rbacService)

	return nil
}
