package payrollrun_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-erp/internal/attendance"
	"go-erp/internal/employeesalary"
	"go-erp/internal/events"
	"go-erp/internal/leave"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/payrollevidence"
	"go-erp/internal/payrollrun"
	payrollrunerrors "go-erp/internal/payrollrun/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRunRepository struct {
	withTxFn                      func(tx *sql.Tx) payrollrun.Repository
	createFn                      func(ctx context.Context, run *payrollrun.PayrollRun) error
	findAllByCompanyFn            func(ctx context.Context, companyID string) ([]payrollrun.PayrollRun, error)
	findByIDAndCompanyFn          func(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error)
	findByIDForUpdateFn           func(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error)
	findPeriodFn                  func(ctx context.Context, companyID, periodID string) (*payrollrun.PeriodInfo, error)
	runNoExistsFn                 func(ctx context.Context, companyID, runNo string) (bool, error)
	employeeBelongsToCompanyFn    func(ctx context.Context, companyID, employeeID string) (bool, error)
	listActiveEmployeesByBranchFn func(ctx context.Context, companyID, branchID string) ([]payrollrun.EmployeeLite, error)
	countLinesByRunFn             func(ctx context.Context, runID string) (int64, error)
	findLinesByRunFn              func(ctx context.Context, companyID, runID string) ([]payrollrun.PayrollRunLine, error)
	findLineByIDFn                func(ctx context.Context, companyID, runID, lineID string) (*payrollrun.PayrollRunLine, error)
	createLineFn                  func(ctx context.Context, line *payrollrun.PayrollRunLine) error
	updateLineFn                  func(ctx context.Context, line *payrollrun.PayrollRunLine) error
	deleteLineFn                  func(ctx context.Context, companyID, runID, lineID string) error
	upsertLineFn                  func(ctx context.Context, line *payrollrun.PayrollRunLine) error
	markPostedFn                  func(ctx context.Context, run *payrollrun.PayrollRun) error
	deleteWithLinesFn             func(ctx context.Context, companyID, id string) error
}

func (f *fakeRunRepository) WithTx(tx *sql.Tx) payrollrun.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRunRepository) Create(ctx context.Context, run *payrollrun.PayrollRun) error {
	if f.createFn != nil {
		return f.createFn(ctx, run)
	}
	return nil
}

func (f *fakeRunRepository) FindAllByCompany(ctx context.Context, companyID string) ([]payrollrun.PayrollRun, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeRunRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*payrollrun.PayrollRun, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunRepository) FindPeriod(ctx context.Context, companyID, periodID string) (*payrollrun.PeriodInfo, error) {
	if f.findPeriodFn != nil {
		return f.findPeriodFn(ctx, companyID, periodID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunRepository) RunNoExists(ctx context.Context, companyID, runNo string) (bool, error) {
	if f.runNoExistsFn != nil {
		return f.runNoExistsFn(ctx, companyID, runNo)
	}
	return false, nil
}

func (f *fakeRunRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsToCompanyFn != nil {
		return f.employeeBelongsToCompanyFn(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeRunRepository) ListActiveEmployeesByBranch(ctx context.Context, companyID, branchID string) ([]payrollrun.EmployeeLite, error) {
	if f.listActiveEmployeesByBranchFn != nil {
		return f.listActiveEmployeesByBranchFn(ctx, companyID, branchID)
	}
	return nil, nil
}

func (f *fakeRunRepository) CountLinesByRun(ctx context.Context, runID string) (int64, error) {
	if f.countLinesByRunFn != nil {
		return f.countLinesByRunFn(ctx, runID)
	}
	return 0, nil
}

func (f *fakeRunRepository) FindLinesByRun(ctx context.Context, companyID, runID string) ([]payrollrun.PayrollRunLine, error) {
	if f.findLinesByRunFn != nil {
		return f.findLinesByRunFn(ctx, companyID, runID)
	}
	return nil, nil
}

func (f *fakeRunRepository) FindLineByID(ctx context.Context, companyID, runID, lineID string) (*payrollrun.PayrollRunLine, error) {
	if f.findLineByIDFn != nil {
		return f.findLineByIDFn(ctx, companyID, runID, lineID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRunRepository) CreateLine(ctx context.Context, line *payrollrun.PayrollRunLine) error {
	if f.createLineFn != nil {
		return f.createLineFn(ctx, line)
	}
	return nil
}

func (f *fakeRunRepository) UpdateLine(ctx context.Context, line *payrollrun.PayrollRunLine) error {
	if f.updateLineFn != nil {
		return f.updateLineFn(ctx, line)
	}
	return nil
}

func (f *fakeRunRepository) DeleteLine(ctx context.Context, companyID, runID, lineID string) error {
	if f.deleteLineFn != nil {
		return f.deleteLineFn(ctx, companyID, runID, lineID)
	}
	return nil
}

func (f *fakeRunRepository) UpsertLine(ctx context.Context, line *payrollrun.PayrollRunLine) error {
	if f.upsertLineFn != nil {
		return f.upsertLineFn(ctx, line)
	}
	return nil
}

func (f *fakeRunRepository) MarkPosted(ctx context.Context, run *payrollrun.PayrollRun) error {
	if f.markPostedFn != nil {
		return f.markPostedFn(ctx, run)
	}
	return nil
}

func (f *fakeRunRepository) DeleteWithLines(ctx context.Context, companyID, id string) error {
	if f.deleteWithLinesFn != nil {
		return f.deleteWithLinesFn(ctx, companyID, id)
	}
	return nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeAttendanceRepository struct {
	findByEmployeeAndDateRangeFn func(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.Attendance, error)
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeAttendanceRepository) Create(ctx context.Context, a *attendance.Attendance) error {
	return nil
}

func (f *fakeAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.Attendance, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindByEmployeeAndDateRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	if f.findByEmployeeAndDateRangeFn != nil {
		return f.findByEmployeeAndDateRangeFn(ctx, companyID, employeeID, from, to)
	}
	return nil, nil
}

func (f *fakeAttendanceRepository) FindAllByCompany(ctx context.Context, companyID string) ([]attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepository) Update(ctx context.Context, a *attendance.Attendance) error {
	return nil
}

type fakeLeaveRepository struct {
	findApprovedByEmployeeAndDateRangeFn func(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.Leave, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error { return nil }

func (f *fakeLeaveRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leave.Leave, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Leave, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindApprovedByEmployeeAndDateRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]leave.Leave, error) {
	if f.findApprovedByEmployeeAndDateRangeFn != nil {
		return f.findApprovedByEmployeeAndDateRangeFn(ctx, companyID, employeeID, from, to)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.Leave) error { return nil }

func (f *fakeLeaveRepository) Delete(ctx context.Context, companyID, id string) error { return nil }

func (f *fakeLeaveRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return true, nil
}

func (f *fakeLeaveRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	return false, nil
}

type fakeSalaryRepository struct {
	findEffectiveByEmployeeFn func(ctx context.Context, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error)
}

func (f *fakeSalaryRepository) WithTx(tx *sql.Tx) employeesalary.Repository { return f }

func (f *fakeSalaryRepository) Create(ctx context.Context, salary *employeesalary.EmployeeSalary) error {
	return nil
}

func (f *fakeSalaryRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employeesalary.EmployeeSalary, error) {
	return nil, nil
}

func (f *fakeSalaryRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*employeesalary.EmployeeSalary, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) FindEffectiveByEmployee(ctx context.Context, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error) {
	if f.findEffectiveByEmployeeFn != nil {
		return f.findEffectiveByEmployeeFn(ctx, employeeID, onDate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSalaryRepository) Delete(ctx context.Context, companyID string, id string) error {
	return nil
}

type fakeCounterRepository struct {
	getNextValueFn func(ctx context.Context, companyID string, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	if f.getNextValueFn != nil {
		return f.getNextValueFn(ctx, companyID, counterType)
	}
	return 1, nil
}

type fakeNotifier struct {
	publishFn func(ctx context.Context, companyID, resource, resourceID, message string) error
	published []string
}

func (f *fakeNotifier) Publish(ctx context.Context, companyID, resource, resourceID, message string) error {
	f.published = append(f.published, message)
	if f.publishFn != nil {
		return f.publishFn(ctx, companyID, resource, resourceID, message)
	}
	return nil
}

type runServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     payrollrun.Service
	repo        *fakeRunRepository
	attendances *fakeAttendanceRepository
	leaves      *fakeLeaveRepository
	salaries    *fakeSalaryRepository
	counter     *fakeCounterRepository
	outbox      *fakeOutboxRepository
	notifier    *fakeNotifier
}

func setupRunServiceTest(t *testing.T) *runServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &runServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		repo:        &fakeRunRepository{},
		attendances: &fakeAttendanceRepository{},
		leaves:      &fakeLeaveRepository{},
		salaries:    &fakeSalaryRepository{},
		counter:     &fakeCounterRepository{},
		outbox:      &fakeOutboxRepository{},
		notifier:    &fakeNotifier{},
	}
	deps.service = payrollrun.NewService(
		db,
		deps.repo,
		deps.attendances,
		deps.leaves,
		deps.salaries,
		deps.counter,
		deps.outbox,
		deps.notifier,
		payrollevidence.DefaultPolicy(),
	)
	return deps
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

func openPeriod(companyID string) *payrollrun.PeriodInfo {
	return &payrollrun.PeriodInfo{
		ID:        uuid.New(),
		BranchID:  uuid.New(),
		Status:    "OPEN",
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestPayrollRunService_Create_GeneratesRunNo(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findPeriodFn = func(ctx context.Context, cid, pid string) (*payrollrun.PeriodInfo, error) {
		return openPeriod(cid), nil
	}
	deps.counter.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
		assert.Equal(t, "payroll_run_no", counterType)
		return 7, nil
	}

	resp, err := deps.service.Create(ctx, companyID, actorID, payrollrun.CreatePayrollRunRequest{
		PeriodID: uuid.New().String(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "RUN-00007", resp.RunNo)
	assert.Equal(t, payrollrun.StatusDraft, resp.Status)
}

func TestPayrollRunService_Create_ClosedPeriodRejected(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	created := false
	deps.repo.findPeriodFn = func(ctx context.Context, cid, pid string) (*payrollrun.PeriodInfo, error) {
		p := openPeriod(cid)
		p.Status = "CLOSED"
		return p, nil
	}
	deps.repo.createFn = func(ctx context.Context, run *payrollrun.PayrollRun) error {
		created = true
		return nil
	}

	_, err := deps.service.Create(ctx, companyID, actorID, payrollrun.CreatePayrollRunRequest{
		PeriodID: uuid.New().String(),
	})

	assert.ErrorIs(t, err, payrollrunerrors.ErrPeriodClosed)
	assert.False(t, created, "tidak boleh ada run yang tersimpan")
}

func TestPayrollRunService_Create_DuplicateRunNo(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findPeriodFn = func(ctx context.Context, cid, pid string) (*payrollrun.PeriodInfo, error) {
		return openPeriod(cid), nil
	}
	deps.repo.runNoExistsFn = func(ctx context.Context, cid, runNo string) (bool, error) {
		return runNo == "RUN-01", nil
	}

	_, err := deps.service.Create(ctx, companyID, actorID, payrollrun.CreatePayrollRunRequest{
		PeriodID: uuid.New().String(),
		RunNo:    "RUN-01",
	})

	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNoAlreadyExists)
}

func TestPayrollRunService_Post(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	runID := uuid.New()
	lineID := uuid.New()
	employeeID := uuid.New()

	t.Run("success publishes outbox event", func(t *testing.T) {
		deps := setupRunServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        runID,
				CompanyID: uuid.MustParse(cid),
				PeriodID:  uuid.New(),
				RunNo:     "RUN-01",
				Status:    payrollrun.StatusDraft,
				CreatedBy: uuid.MustParse(actorID),
			}, nil
		}
		deps.repo.countLinesByRunFn = func(ctx context.Context, id string) (int64, error) {
			return 1, nil
		}
		deps.repo.findLinesByRunFn = func(ctx context.Context, cid, id string) ([]payrollrun.PayrollRunLine, error) {
			return []payrollrun.PayrollRunLine{{
				ID:         lineID,
				RunID:      runID,
				EmployeeID: employeeID,
				Amount:     15_000_000_00,
			}}, nil
		}

		var outboxEvent kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			outboxEvent = event
			return nil
		}

		resp, err := deps.service.Post(ctx, companyID, actorID, runID.String())

		assert.NoError(t, err)
		assert.Equal(t, payrollrun.StatusPosted, resp.Status)
		assert.NotNil(t, resp.PostedBy)
		assert.NotNil(t, resp.PostedAt)

		assert.Equal(t, events.PayrollRunPostedTopic, outboxEvent.Topic)
		assert.Equal(t, kafka.OutboxStatusPending, outboxEvent.Status)
		var payload events.PayrollRunPostedEvent
		assert.NoError(t, json.Unmarshal(outboxEvent.Payload, &payload))
		assert.Len(t, payload.Lines, 1)
		assert.Equal(t, int64(15_000_000_00), payload.Lines[0].Amount)

		assert.Len(t, deps.notifier.published, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already posted", func(t *testing.T) {
		deps := setupRunServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        runID,
				CompanyID: uuid.MustParse(cid),
				PeriodID:  uuid.New(),
				Status:    payrollrun.StatusPosted,
				CreatedBy: uuid.MustParse(actorID),
			}, nil
		}

		_, err := deps.service.Post(ctx, companyID, actorID, runID.String())

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunAlreadyPosted)
		assert.Empty(t, deps.notifier.published)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("no lines", func(t *testing.T) {
		deps := setupRunServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
			return &payrollrun.PayrollRun{
				ID:        runID,
				CompanyID: uuid.MustParse(cid),
				PeriodID:  uuid.New(),
				Status:    payrollrun.StatusDraft,
				CreatedBy: uuid.MustParse(actorID),
			}, nil
		}

		_, err := deps.service.Post(ctx, companyID, actorID, runID.String())

		assert.ErrorIs(t, err, payrollrunerrors.ErrRunHasNoLines)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollRunService_LineMutationsRequireDraft(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusPosted,
			CreatedBy: uuid.New(),
		}, nil
	}
	deps.repo.createLineFn = func(ctx context.Context, line *payrollrun.PayrollRunLine) error {
		t.Fatal("baris tidak boleh ditulis ke run POSTED")
		return nil
	}
	deps.repo.updateLineFn = func(ctx context.Context, line *payrollrun.PayrollRunLine) error {
		t.Fatal("baris tidak boleh ditulis ke run POSTED")
		return nil
	}
	deps.repo.deleteLineFn = func(ctx context.Context, cid, rid, lid string) error {
		t.Fatal("baris tidak boleh dihapus dari run POSTED")
		return nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.CreateLine(ctx, companyID, runID.String(), payrollrun.CreateRunLineRequest{
		EmployeeID: uuid.New().String(),
		Amount:     100,
	})
	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotDraft)

	expectTx(t, deps.sqlMock, false)
	_, err = deps.service.UpdateLine(ctx, companyID, runID.String(), uuid.New().String(), payrollrun.UpdateRunLineRequest{Amount: 200})
	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotDraft)

	expectTx(t, deps.sqlMock, false)
	err = deps.service.DeleteLine(ctx, companyID, runID.String(), uuid.New().String())
	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotDraft)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

// Mutasi baris harus membaca status lewat row lock, bukan snapshot biasa:
// run yang keburu di-post di antara dua pembacaan tetap tertolak.
func TestPayrollRunService_CreateLine_RunPostedConcurrently(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	// Pembacaan tanpa lock masih melihat DRAFT lama.
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusDraft,
			CreatedBy: uuid.New(),
		}, nil
	}
	// FOR UPDATE menunggu transaksi post commit, lalu melihat POSTED.
	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusPosted,
			CreatedBy: uuid.New(),
		}, nil
	}
	deps.repo.createLineFn = func(ctx context.Context, line *payrollrun.PayrollRunLine) error {
		t.Fatal("baris tidak boleh ditulis ke run POSTED")
		return nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.CreateLine(ctx, companyID, runID.String(), payrollrun.CreateRunLineRequest{
		EmployeeID: uuid.New().String(),
		Amount:     100,
	})

	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotDraft)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollRunService_CreateLine_EmployeeOutsideCompany(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusDraft,
			CreatedBy: uuid.New(),
		}, nil
	}
	deps.repo.employeeBelongsToCompanyFn = func(ctx context.Context, cid, eid string) (bool, error) {
		return false, nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.CreateLine(ctx, companyID, runID.String(), payrollrun.CreateRunLineRequest{
		EmployeeID: uuid.New().String(),
		Amount:     100,
	})

	assert.ErrorIs(t, err, payrollrunerrors.ErrEmployeeNotInCompany)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollRunService_Calculate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()
	withSalary := uuid.New()
	withoutSalary := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	period := openPeriod(companyID)
	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  period.ID,
			Status:    payrollrun.StatusDraft,
			CreatedBy: uuid.New(),
		}, nil
	}
	deps.repo.findPeriodFn = func(ctx context.Context, cid, pid string) (*payrollrun.PeriodInfo, error) {
		return period, nil
	}
	deps.repo.listActiveEmployeesByBranchFn = func(ctx context.Context, cid, bid string) ([]payrollrun.EmployeeLite, error) {
		return []payrollrun.EmployeeLite{
			{ID: withSalary, Allowance: 500_000_00},
			{ID: withoutSalary, Allowance: 0},
		}, nil
	}
	deps.salaries.findEffectiveByEmployeeFn = func(ctx context.Context, employeeID string, onDate time.Time) (*employeesalary.EmployeeSalary, error) {
		if employeeID == withSalary.String() {
			return &employeesalary.EmployeeSalary{
				EmployeeID: withSalary,
				BaseSalary: 24_000_000_00,
			}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	// Hadir penuh di seluruh 24 hari kerja Februari 2026.
	deps.attendances.findByEmployeeAndDateRangeFn = func(ctx context.Context, cid, eid string, from, to time.Time) ([]attendance.Attendance, error) {
		var rows []attendance.Attendance
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == time.Sunday {
				continue
			}
			rows = append(rows, attendance.Attendance{AttendanceDate: d, Status: "PRESENT"})
		}
		return rows, nil
	}

	expectTx(t, deps.sqlMock, true)
	var upserted []payrollrun.PayrollRunLine
	deps.repo.upsertLineFn = func(ctx context.Context, line *payrollrun.PayrollRunLine) error {
		upserted = append(upserted, *line)
		return nil
	}

	result, err := deps.service.Calculate(ctx, companyID, runID.String())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.LinesUpserted)
	assert.Equal(t, 1, result.EmployeesSkipped)
	assert.Len(t, upserted, 1)
	assert.Equal(t, withSalary, upserted[0].EmployeeID)
	// 24 hari kerja penuh hadir: gaji pokok utuh + tunjangan.
	assert.Equal(t, int64(24_500_000_00), upserted[0].Amount)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollRunService_Calculate_NotDraft(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDForUpdateFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusPosted,
			CreatedBy: uuid.New(),
		}, nil
	}

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.Calculate(ctx, companyID, runID.String())

	assert.ErrorIs(t, err, payrollrunerrors.ErrRunNotDraft)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayrollRunService_Delete_PostedRejected(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payrollrun.PayrollRun, error) {
		return &payrollrun.PayrollRun{
			ID:        runID,
			CompanyID: uuid.MustParse(cid),
			PeriodID:  uuid.New(),
			Status:    payrollrun.StatusPosted,
			CreatedBy: uuid.New(),
		}, nil
	}

	err := deps.service.Delete(ctx, companyID, runID.String())

	assert.ErrorIs(t, err, payrollrunerrors.ErrRunAlreadyPosted)
}
