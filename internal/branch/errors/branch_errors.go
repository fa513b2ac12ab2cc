package brancherrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrBranchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Branch not found",
		http.StatusNotFound,
	)
	ErrBranchCodeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Branch code already exists in this company",
		http.StatusConflict,
	)
	ErrBranchReferencedByPeriods = apperror.New(
		apperror.CodeConflict,
		"Branch still has payroll periods and cannot be deleted",
		http.StatusConflict,
	)
)
