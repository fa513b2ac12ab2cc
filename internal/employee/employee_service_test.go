package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"go-erp/internal/employee"
	employeeerrors "go-erp/internal/employee/errors"
	"go-erp/internal/events"
	"go-erp/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	createFn                 func(ctx context.Context, empl *employee.Employee) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]employee.Employee, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*employee.Employee, error)
	findByIDFn               func(ctx context.Context, id string) (*employee.Employee, error)
	branchBelongsToCompanyFn func(ctx context.Context, companyID, branchID string) (bool, error)
	updateFn                 func(ctx context.Context, empl *employee.Employee) error
	deleteFn                 func(ctx context.Context, companyID, id string) error
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) Create(ctx context.Context, empl *employee.Employee) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, empl)
}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	if f.findAllByCompanyFn == nil {
		return nil, nil
	}
	return f.findAllByCompanyFn(ctx, companyID)
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if f.findByIDAndCompanyFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByIDAndCompanyFn(ctx, companyID, id)
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByIDFn(ctx, id)
}

func (f *fakeEmployeeRepository) BranchBelongsToCompany(ctx context.Context, companyID, branchID string) (bool, error) {
	if f.branchBelongsToCompanyFn == nil {
		return true, nil
	}
	return f.branchBelongsToCompanyFn(ctx, companyID, branchID)
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, empl *employee.Employee) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, empl)
}

func (f *fakeEmployeeRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, companyID, id)
}

type fakeCounterRepository struct {
	getNextValueFn func(ctx context.Context, companyID, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	if f.getNextValueFn == nil {
		return 1, nil
	}
	return f.getNextValueFn(ctx, companyID, counterType)
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func setupEmployeeServiceTest(
	t *testing.T,
	repo *fakeEmployeeRepository,
	counterRepo *fakeCounterRepository,
	outboxRepo *fakeOutboxRepository,
) (employee.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// rdb nil: GetOptions jatuh ke GetAll tanpa cache.
	return employee.NewServiceWithOutbox(db, repo, counterRepo, outboxRepo, nil), mock
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

func TestService_Create_GeneratesEmployeeNumber(t *testing.T) {
	companyID := uuid.New().String()

	var created *employee.Employee
	repo := &fakeEmployeeRepository{
		createFn: func(ctx context.Context, empl *employee.Employee) error {
			created = empl
			return nil
		},
	}
	counterRepo := &fakeCounterRepository{
		getNextValueFn: func(ctx context.Context, cid, counterType string) (int64, error) {
			assert.Equal(t, "employee_number", counterType)
			return 42, nil
		},
	}
	outboxRepo := &fakeOutboxRepository{}

	svc, mock := setupEmployeeServiceTest(t, repo, counterRepo, outboxRepo)
	expectTx(t, mock, true)

	res, err := svc.Create(context.Background(), companyID, employee.CreateEmployeeRequest{
		FullName: "Siti Rahma",
		Email:    "siti.rahma@example.com",
		Position: "Staff Finance",
		HireDate: "2026-01-15",
	})

	assert.NoError(t, err)
	assert.Equal(t, "EMP-000042", res.EmployeeNumber)
	assert.Equal(t, "ACTIVE", res.EmploymentStatus)
	assert.NotNil(t, created)
	assert.Nil(t, created.BranchID)

	// lifecycle event masuk outbox dalam transaksi yang sama
	assert.Len(t, outboxRepo.created, 1)
	assert.Equal(t, events.EmployeeCreatedTopic, outboxRepo.created[0].Topic)
	assert.Equal(t, kafka.OutboxStatusPending, outboxRepo.created[0].Status)

	var event events.EmployeeCreatedEvent
	assert.NoError(t, json.Unmarshal(outboxRepo.created[0].Payload, &event))
	assert.Equal(t, "employee_created", event.EventType)
	assert.Equal(t, created.ID.String(), event.EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_BranchOutsideCompany(t *testing.T) {
	repo := &fakeEmployeeRepository{
		branchBelongsToCompanyFn: func(ctx context.Context, cid, bid string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, empl *employee.Employee) error {
			t.Fatal("create should not be called")
			return nil
		},
	}

	svc, mock := setupEmployeeServiceTest(t, repo, &fakeCounterRepository{}, &fakeOutboxRepository{})
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), employee.CreateEmployeeRequest{
		BranchID: uuid.New().String(),
		FullName: "Agus Wijaya",
		Email:    "agus.wijaya@example.com",
		HireDate: "2026-01-15",
	})

	assert.ErrorIs(t, err, employeeerrors.ErrBranchNotInCompany)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_InvalidHireDate(t *testing.T) {
	svc, mock := setupEmployeeServiceTest(t, &fakeEmployeeRepository{}, &fakeCounterRepository{}, &fakeOutboxRepository{})
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), employee.CreateEmployeeRequest{
		FullName: "Agus Wijaya",
		Email:    "agus.wijaya@example.com",
		HireDate: "15/01/2026",
	})

	assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_DuplicateEmployeeNumber(t *testing.T) {
	repo := &fakeEmployeeRepository{
		createFn: func(ctx context.Context, empl *employee.Employee) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_company_number"}
		},
	}

	svc, mock := setupEmployeeServiceTest(t, repo, &fakeCounterRepository{}, &fakeOutboxRepository{})
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), employee.CreateEmployeeRequest{
		EmployeeNumber: "EMP-000001",
		FullName:       "Agus Wijaya",
		Email:          "agus.wijaya@example.com",
		HireDate:       "2026-01-15",
	})

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNumberAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupEmployeeServiceTest(t, &fakeEmployeeRepository{}, &fakeCounterRepository{}, &fakeOutboxRepository{})

	_, err := svc.GetByID(context.Background(), uuid.New().String(), uuid.New().String())

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
}
