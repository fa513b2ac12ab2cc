package payrollperiod_test

import (
	"context"
	"database/sql"
	"testing"

	"go-erp/internal/payrollperiod"
	payrollperioderrors "go-erp/internal/payrollperiod/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePeriodRepository struct {
	withTxFn                 func(tx *sql.Tx) payrollperiod.Repository
	createFn                 func(ctx context.Context, period *payrollperiod.PayrollPeriod) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]payrollperiod.PayrollPeriod, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*payrollperiod.PayrollPeriod, error)
	findByIDForUpdateFn      func(ctx context.Context, companyID, id string) (*payrollperiod.PayrollPeriod, error)
	branchBelongsToCompanyFn func(ctx context.Context, companyID, branchID string) (bool, error)
	codeExistsFn             func(ctx context.Context, companyID, branchID, periodCode string, excludeID *string) (bool, error)
	countRunsByPeriodFn      func(ctx context.Context, companyID, periodID string) (int64, error)
	countDraftRunsByPeriodFn func(ctx context.Context, companyID, periodID string) (int64, error)
	updateFn                 func(ctx context.Context, period *payrollperiod.PayrollPeriod) error
	deleteFn                 func(ctx context.Context, companyID, id string) error
}

func (f *fakePeriodRepository) WithTx(tx *sql.Tx) payrollperiod.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakePeriodRepository) Create(ctx context.Context, period *payrollperiod.PayrollPeriod) error {
	if f.createFn != nil {
		return f.createFn(ctx, period)
	}
	return nil
}

func (f *fakePeriodRepository) FindAllByCompany(ctx context.Context, companyID string) ([]payrollperiod.PayrollPeriod, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePeriodRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrollperiod.PayrollPeriod, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePeriodRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*payrollperiod.PayrollPeriod, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePeriodRepository) BranchBelongsToCompany(ctx context.Context, companyID, branchID string) (bool, error) {
	if f.branchBelongsToCompanyFn != nil {
		return f.branchBelongsToCompanyFn(ctx, companyID, branchID)
	}
	return true, nil
}

func (f *fakePeriodRepository) CodeExists(ctx context.Context, companyID, branchID, periodCode string, excludeID *string) (bool, error) {
	if f.codeExistsFn != nil {
		return f.codeExistsFn(ctx, companyID, branchID, periodCode, excludeID)
	}
	return false, nil
}

func (f *fakePeriodRepository) CountRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	if f.countRunsByPeriodFn != nil {
		return f.countRunsByPeriodFn(ctx, companyID, periodID)
	}
	return 0, nil
}

func (f *fakePeriodRepository) CountDraftRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	if f.countDraftRunsByPeriodFn != nil {
		return f.countDraftRunsByPeriodFn(ctx, companyID, periodID)
	}
	return 0, nil
}

func (f *fakePeriodRepository) Update(ctx context.Context, period *payrollperiod.PayrollPeriod) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, period)
	}
	return nil
}

func (f *fakePeriodRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

type fakeNotifier struct {
	published []string
}

func (f *fakeNotifier) Publish(ctx context.Context, companyID, resource, resourceID, message string) error {
	f.published = append(f.published, message)
	return nil
}

type periodServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  payrollperiod.Service
	repo     *fakePeriodRepository
	notifier *fakeNotifier
}

func setupPeriodServiceTest(t *testing.T) *periodServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePeriodRepository{}
	notifier := &fakeNotifier{}
	svc := payrollperiod.NewService(db, repo, notifier)

	return &periodServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, notifier: notifier}
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

func draftPeriod(companyID, id string, status string) *payrollperiod.PayrollPeriod {
	return &payrollperiod.PayrollPeriod{
		ID:         uuid.MustParse(id),
		CompanyID:  uuid.MustParse(companyID),
		BranchID:   uuid.New(),
		PeriodCode: "KL-2024-01",
		Status:     status,
		CreatedBy:  uuid.New(),
	}
}

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from, event, want string
		ok                bool
	}{
		{payrollperiod.StatusOpen, payrollperiod.EventProcess, payrollperiod.StatusProcessed, true},
		{payrollperiod.StatusOpen, payrollperiod.EventClose, payrollperiod.StatusClosed, true},
		{payrollperiod.StatusProcessed, payrollperiod.EventClose, payrollperiod.StatusClosed, true},
		{payrollperiod.StatusProcessed, payrollperiod.EventProcess, "", false},
		{payrollperiod.StatusClosed, payrollperiod.EventClose, "", false},
		{payrollperiod.StatusClosed, payrollperiod.EventProcess, "", false},
		{"BOGUS", payrollperiod.EventProcess, "", false},
	}
	for _, tc := range cases {
		got, ok := payrollperiod.NextStatus(tc.from, tc.event)
		assert.Equal(t, tc.ok, ok, "%s + %s", tc.from, tc.event)
		assert.Equal(t, tc.want, got, "%s + %s", tc.from, tc.event)
	}
}

func TestPayrollPeriodService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupPeriodServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.codeExistsFn = func(ctx context.Context, cid, bid, code string, excludeID *string) (bool, error) {
		return true, nil
	}

	_, err := deps.service.Create(ctx, companyID, actorID, payrollperiod.CreatePayrollPeriodRequest{
		BranchID:   uuid.New().String(),
		PeriodCode: "KL-2024-01",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
	})

	assert.ErrorIs(t, err, payrollperioderrors.ErrPeriodCodeAlreadyExists)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollPeriodService_Create_InvalidDateRange(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupPeriodServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.Create(ctx, companyID, actorID, payrollperiod.CreatePayrollPeriodRequest{
		BranchID:   uuid.New().String(),
		PeriodCode: "KL-2024-01",
		StartDate:  "2024-01-31",
		EndDate:    "2024-01-01",
	})

	assert.ErrorIs(t, err, payrollperioderrors.ErrInvalidDateRange)
}

func TestPayrollPeriodService_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupPeriodServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
		return draftPeriod(cid, id, payrollperiod.StatusOpen), nil
	}

	resp, err := deps.service.MarkProcessed(ctx, companyID, actorID, periodID)

	assert.NoError(t, err)
	assert.Equal(t, payrollperiod.StatusProcessed, resp.Status)
	assert.Empty(t, deps.notifier.published, "process tidak mengirim notifikasi")
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollPeriodService_Close(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	periodID := uuid.New().String()

	t.Run("success sets closed metadata and notifies", func(t *testing.T) {
		deps := setupPeriodServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
			return draftPeriod(cid, id, payrollperiod.StatusProcessed), nil
		}
		var saved *payrollperiod.PayrollPeriod
		deps.repo.updateFn = func(ctx context.Context, period *payrollperiod.PayrollPeriod) error {
			saved = period
			return nil
		}

		resp, err := deps.service.Close(ctx, companyID, actorID, periodID)

		assert.NoError(t, err)
		assert.Equal(t, payrollperiod.StatusClosed, resp.Status)
		assert.NotNil(t, saved.ClosedBy)
		assert.Equal(t, actorID, saved.ClosedBy.String())
		assert.NotNil(t, saved.ClosedAt)
		assert.Len(t, deps.notifier.published, 1)
		assert.Contains(t, deps.notifier.published[0], "KL-2024-01")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("draft runs block close", func(t *testing.T) {
		deps := setupPeriodServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
			return draftPeriod(cid, id, payrollperiod.StatusProcessed), nil
		}
		deps.repo.countDraftRunsByPeriodFn = func(ctx context.Context, cid, pid string) (int64, error) {
			return 2, nil
		}

		_, err := deps.service.Close(ctx, companyID, actorID, periodID)

		assert.ErrorIs(t, err, payrollperioderrors.ErrPeriodHasDraftRuns)
		assert.Empty(t, deps.notifier.published)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already closed", func(t *testing.T) {
		deps := setupPeriodServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
			return draftPeriod(cid, id, payrollperiod.StatusClosed), nil
		}

		_, err := deps.service.Close(ctx, companyID, actorID, periodID)

		assert.ErrorIs(t, err, payrollperioderrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollPeriodService_Update_ClosedRejected(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupPeriodServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
		return draftPeriod(cid, id, payrollperiod.StatusClosed), nil
	}

	_, err := deps.service.Update(ctx, companyID, periodID, payrollperiod.UpdatePayrollPeriodRequest{
		PeriodCode: "KL-2024-02",
		StartDate:  "2024-02-01",
		EndDate:    "2024-02-29",
	})

	assert.ErrorIs(t, err, payrollperioderrors.ErrPeriodClosed)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollPeriodService_Delete_WithRunsRejected(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	periodID := uuid.New().String()

	deps := setupPeriodServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollperiod.PayrollPeriod, error) {
		return draftPeriod(cid, id, payrollperiod.StatusOpen), nil
	}
	deps.repo.countRunsByPeriodFn = func(ctx context.Context, cid, pid string) (int64, error) {
		return 1, nil
	}

	err := deps.service.Delete(ctx, companyID, periodID)

	assert.ErrorIs(t, err, payrollperioderrors.ErrPeriodHasRuns)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
