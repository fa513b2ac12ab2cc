package rbacerrors

import (
	"net/http"

	"go-erp/internal/shared/apperror"
)

var (
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"Role not found",
		http.StatusNotFound,
	)
	ErrRoleNameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Role name already exists in this company",
		http.StatusConflict,
	)
)
