package payrollrunerrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrLineNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run line not found",
		http.StatusNotFound,
	)
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
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrPeriodClosed = apperror.New(
		apperror.CodeInvalidInput,
		"cannot create a run against a closed period",
		http.StatusBadRequest,
	)
	ErrRunNoAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"run_no already exists in this company",
		http.StatusConflict,
	)
	ErrRunNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is not in DRAFT status",
		http.StatusConflict,
	)
	ErrRunAlreadyPosted = apperror.New(
		apperror.CodeInvalidState,
		"payroll run is already posted",
		http.StatusConflict,
	)
	ErrRunHasNoLines = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has no lines and cannot be posted",
		http.StatusConflict,
	)
	ErrDuplicateLineEmployee = apperror.New(
		apperror.CodeConflict,
		"employee already has a line in this run",
		http.StatusConflict,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrNoEffectiveSalary = apperror.New(
		apperror.CodeInvalidState,
		"employee has no salary effective in this period",
		http.StatusConflict,
	)
)
