package payrollrun

import (
	"errors"
	"strings"

	payrollrunerrors "go-erp/internal/payrollrun/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollrunerrors.ErrRunNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "idx_run_company_no":
			return payrollrunerrors.ErrRunNoAlreadyExists
		case "uq_run_line_employee":
			return payrollrunerrors.ErrDuplicateLineEmployee
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		if strings.Contains(errMsg, "uq_run_line_employee") {
			return payrollrunerrors.ErrDuplicateLineEmployee
		}
		if strings.Contains(errMsg, "idx_run_company_no") {
			return payrollrunerrors.ErrRunNoAlreadyExists
		}
	}

	return err
}
