package employeesalary_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-erp/internal/employeesalary"
	employeesalaryerrors "go-erp/internal/employeesalary/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSalaryRepository struct {
	createFn             func(ctx context.Context, salary *employeesalary.EmployeeSalary) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]employeesalary.EmployeeSalary, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error)
	findEffectiveByEmpFn func(ctx context.Context, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error)
	deleteFn             func(ctx context.Context, companyID, id string) error
}

func (f *fakeSalaryRepository) WithTx(tx *sql.Tx) employeesalary.Repository { return f }

func (f *fakeSalaryRepository) Create(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, salary)
}

func (f *fakeSalaryRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employeesalary.EmployeeSalary, error) {
	if f.findAllByCompanyFn == nil {
		return nil, nil
	}
	return f.findAllByCompanyFn(ctx, companyID)
}

func (f *fakeSalaryRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employeesalary.EmployeeSalary, error) {
	if f.findByIDAndCompanyFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByIDAndCompanyFn(ctx, companyID, id)
}

func (f *fakeSalaryRepository) FindEffectiveByEmployee(ctx context.Context, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error) {
	if f.findEffectiveByEmpFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findEffectiveByEmpFn(ctx, employeeID, onDate)
}

func (f *fakeSalaryRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, companyID, id)
}

func setupSalaryServiceTest(t *testing.T, repo *fakeSalaryRepository) (employeesalary.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return employeesalary.NewService(db, repo), mock
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()

	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestService_Create(t *testing.T) {
	companyID := uuid.New().String()
	employeeID := uuid.New()

	var created *employeesalary.EmployeeSalary
	repo := &fakeSalaryRepository{
		createFn: func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			created = salary
			return nil
		},
		findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*employeesalary.EmployeeSalary, error) {
			s := *created
			s.EmployeeName = "Budi Santoso"
			return &s, nil
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, true)

	res, err := svc.Create(context.Background(), companyID, employeesalary.CreateEmployeeSalaryRequest{
		EmployeeID:    employeeID.String(),
		BaseSalary:    12_000_000_00,
		EffectiveDate: "2026-01-01",
	})

	assert.NoError(t, err)
	assert.Equal(t, employeeID.String(), res.EmployeeID)
	assert.Equal(t, "Budi Santoso", res.EmployeeName)
	assert.Equal(t, int64(12_000_000_00), res.BaseSalary)
	assert.Equal(t, "2026-01-01", res.EffectiveDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_InvalidEffectiveDate(t *testing.T) {
	repo := &fakeSalaryRepository{
		createFn: func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			t.Fatal("create should not be called")
			return nil
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), employeesalary.CreateEmployeeSalaryRequest{
		EmployeeID:    uuid.New().String(),
		BaseSalary:    10_000_000_00,
		EffectiveDate: "01-02-2026",
	})

	assert.ErrorIs(t, err, employeesalaryerrors.ErrInvalidEffectiveDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_DuplicateEffectiveDate(t *testing.T) {
	repo := &fakeSalaryRepository{
		createFn: func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_salary_effective"}
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), employeesalary.CreateEmployeeSalaryRequest{
		EmployeeID:    uuid.New().String(),
		BaseSalary:    10_000_000_00,
		EffectiveDate: "2026-01-01",
	})

	assert.ErrorIs(t, err, employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Update harus menghasilkan baris baru, bukan memutasi baris lama.
func TestService_Update_AppendsNewRow(t *testing.T) {
	companyID := uuid.New().String()
	employeeID := uuid.New()
	existingID := uuid.New()

	existing := employeesalary.EmployeeSalary{
		ID:            existingID,
		EmployeeID:    employeeID,
		BaseSalary:    10_000_000_00,
		EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var created *employeesalary.EmployeeSalary
	repo := &fakeSalaryRepository{
		findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*employeesalary.EmployeeSalary, error) {
			assert.Equal(t, existingID.String(), id)
			s := existing
			return &s, nil
		},
		createFn: func(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
			created = salary
			return nil
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, true)

	res, err := svc.Update(context.Background(), companyID, existingID.String(), employeesalary.UpdateEmployeeSalaryRequest{
		EmployeeID:    employeeID.String(),
		BaseSalary:    13_000_000_00,
		EffectiveDate: "2026-02-01",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.NotEqual(t, existingID, created.ID)
	assert.Equal(t, int64(13_000_000_00), created.BaseSalary)
	assert.NotEqual(t, existingID.String(), res.ID)
	assert.Equal(t, "2026-02-01", res.EffectiveDate)
	assert.Equal(t, int64(10_000_000_00), existing.BaseSalary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_NotFound(t *testing.T) {
	repo := &fakeSalaryRepository{
		findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*employeesalary.EmployeeSalary, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, false)

	_, err := svc.Update(context.Background(), uuid.New().String(), uuid.New().String(), employeesalary.UpdateEmployeeSalaryRequest{
		EmployeeID:    uuid.New().String(),
		BaseSalary:    10_000_000_00,
		EffectiveDate: "2026-02-01",
	})

	assert.ErrorIs(t, err, employeesalaryerrors.ErrSalaryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &fakeSalaryRepository{
		deleteFn: func(ctx context.Context, companyID, id string) error {
			return gorm.ErrRecordNotFound
		},
	}

	svc, mock := setupSalaryServiceTest(t, repo)
	expectTx(t, mock, false)

	err := svc.Delete(context.Background(), uuid.New().String(), uuid.New().String())

	assert.ErrorIs(t, err, employeesalaryerrors.ErrSalaryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
