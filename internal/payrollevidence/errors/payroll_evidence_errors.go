package payrollevidenceerrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrEvidenceNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run line not found for this employee",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrNoEffectiveSalary = apperror.New(
		apperror.CodeInvalidState,
		"employee has no salary effective in this period",
		http.StatusConflict,
	)
)
