package payrollperioderrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidBranchID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid branch id",
		http.StatusBadRequest,
	)
	ErrBranchNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"branch does not belong to this company",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrPeriodCodeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"period_code already exists for this branch",
		http.StatusConflict,
	)
	ErrPeriodClosed = apperror.New(
		apperror.CodeInvalidState,
		"payroll period is closed and cannot be modified",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll period status transition",
		http.StatusConflict,
	)
	ErrPeriodHasDraftRuns = apperror.New(
		apperror.CodeInvalidState,
		"payroll period still has draft runs and cannot be closed",
		http.StatusConflict,
	)
	ErrPeriodHasRuns = apperror.New(
		apperror.CodeConflict,
		"payroll period is referenced by runs and cannot be deleted",
		http.StatusConflict,
	)
)
