package payrollrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-erp/internal/attendance"
	"go-erp/internal/employeesalary"
	"go-erp/internal/events"
	"go-erp/internal/leave"
	"go-erp/internal/messaging/kafka"
	"go-erp/internal/notification"
	"go-erp/internal/payrollevidence"
	payrollrunerrors "go-erp/internal/payrollrun/errors"
	"go-erp/internal/shared/contextutil"
	"go-erp/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePayrollRunRequest) (PayrollRunResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PayrollRunResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PayrollRunResponse, error)
	Post(ctx context.Context, companyID, actorID, id string) (PayrollRunResponse, error)
	Calculate(ctx context.Context, companyID, id string) (CalculateResultResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	CreateLine(ctx context.Context, companyID, runID string, req CreateRunLineRequest) (PayrollRunLineResponse, error)
	UpdateLine(ctx context.Context, companyID, runID, lineID string, req UpdateRunLineRequest) (PayrollRunLineResponse, error)
	DeleteLine(ctx context.Context, companyID, runID, lineID string) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	attendances attendance.Repository
	leaves      leave.Repository
	salaries    employeesalary.Repository
	counter     counter.Repository
	outbox      kafka.OutboxRepository
	notifier    notification.Publisher
	policy      payrollevidence.Policy
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendanceRepo attendance.Repository,
	leaveRepo leave.Repository,
	salaryRepo employeesalary.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	notifier notification.Publisher,
	policy payrollevidence.Policy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payrollrun.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollrun.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		attendances: attendanceRepo,
		leaves:      leaveRepo,
		salaries:    salaryRepo,
		counter:     counterRepo,
		outbox:      outboxRepo,
		notifier:    notifier,
		policy:      policy,
		logger:      l,
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreatePayrollRunRequest,
) (PayrollRunResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create payroll run requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("period_id", req.PeriodID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PayrollRunResponse{}, payrollrunerrors.ErrInvalidCompanyID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollRunResponse{}, payrollrunerrors.ErrInvalidActorID
	}

	period, err := s.repo.FindPeriod(ctx, companyID, req.PeriodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunResponse{}, payrollrunerrors.ErrPeriodNotFound
		}
		return PayrollRunResponse{}, err
	}
	// Periode CLOSED menolak run baru sebagai input tidak valid, bukan
	// konflik state: dari sudut pandang klien run-nya belum pernah ada.
	if period.Status == "CLOSED" {
		return PayrollRunResponse{}, payrollrunerrors.ErrPeriodClosed
	}

	runNo := req.RunNo
	if runNo == "" {
		nextVal, err := s.counter.GetNextValue(ctx, companyID, "payroll_run_no")
		if err != nil {
			s.logger.Error("create payroll run counter failed", zap.Error(err))
			return PayrollRunResponse{}, err
		}
		runNo = fmt.Sprintf("RUN-%05d", nextVal)
	} else {
		exists, err := s.repo.RunNoExists(ctx, companyID, runNo)
		if err != nil {
			return PayrollRunResponse{}, err
		}
		if exists {
			return PayrollRunResponse{}, payrollrunerrors.ErrRunNoAlreadyExists
		}
	}

	run := &PayrollRun{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		PeriodID:  period.ID,
		RunNo:     runNo,
		Status:    StatusDraft,
		CreatedBy: createdByUUID,
	}

	if err := s.repo.Create(ctx, run); err != nil {
		s.logger.Error("create payroll run persist failed", zap.Error(err))
		return PayrollRunResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create payroll run success",
		zap.String("request_id", rid),
		zap.String("run_id", run.ID.String()),
		zap.String("run_no", run.RunNo),
	)

	return mapRunToResponse(*run), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PayrollRunResponse, error) {
	runs, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, mapRunToResponse(run))
	}
	return responses, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayrollRunResponse, error) {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunResponse{}, payrollrunerrors.ErrRunNotFound
		}
		return PayrollRunResponse{}, err
	}
	return mapRunToResponse(*run), nil
}

// Post memindahkan run DRAFT ke POSTED di bawah row lock. Dua request post
// bersamaan akan serial di FOR UPDATE; yang kedua melihat status POSTED dan
// gagal di tabel transisi.
func (s *service) Post(ctx context.Context, companyID, actorID, id string) (PayrollRunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	postedByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollRunResponse{}, payrollrunerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("post payroll run begin tx failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunResponse{}, payrollrunerrors.ErrRunNotFound
		}
		return PayrollRunResponse{}, err
	}

	next, ok := NextStatus(run.Status, EventPost)
	if !ok {
		if run.Status == StatusPosted {
			return PayrollRunResponse{}, payrollrunerrors.ErrRunAlreadyPosted
		}
		return PayrollRunResponse{}, payrollrunerrors.ErrRunNotDraft
	}

	lineCount, err := qtx.CountLinesByRun(ctx, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if lineCount == 0 {
		return PayrollRunResponse{}, payrollrunerrors.ErrRunHasNoLines
	}

	now := time.Now().UTC()
	run.Status = next
	run.PostedBy = &postedByUUID
	run.PostedAt = &now

	if err := qtx.MarkPosted(ctx, run); err != nil {
		s.logger.Error("post payroll run persist failed", zap.Error(err))
		return PayrollRunResponse{}, err
	}

	// Baris dibaca lewat transaksi yang sama supaya isi event outbox persis
	// set baris yang dikunci ikut posting ini.
	lines, err := qtx.FindLinesByRun(ctx, companyID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	if s.outbox != nil {
		event := events.PayrollRunPostedEvent{
			EventType:  "payroll_run_posted",
			RunID:      run.ID.String(),
			RunNo:      run.RunNo,
			PeriodID:   run.PeriodID.String(),
			CompanyID:  run.CompanyID.String(),
			PostedBy:   postedByUUID.String(),
			OccurredAt: now,
		}
		for _, line := range lines {
			event.Lines = append(event.Lines, events.PayrollRunPostedLine{
				LineID:     line.ID.String(),
				EmployeeID: line.EmployeeID.String(),
				Amount:     line.Amount,
			})
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return PayrollRunResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "payroll_run",
			AggregateID:   run.ID.String(),
			EventType:     event.EventType,
			Topic:         events.PayrollRunPostedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("post payroll run outbox persist failed",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
			return PayrollRunResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("post payroll run commit failed", zap.String("request_id", rid), zap.Error(err))
		return PayrollRunResponse{}, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Payroll run %s posted", run.RunNo)
		if err := s.notifier.Publish(ctx, companyID, "payroll_run", run.ID.String(), msg); err != nil {
			s.logger.Warn("post payroll run notification publish failed",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("post payroll run success",
		zap.String("request_id", rid),
		zap.String("run_id", run.ID.String()),
		zap.Int64("line_count", lineCount),
	)

	resp := mapRunToResponse(*run)
	resp.Lines = mapLinesToResponse(lines)
	return resp, nil
}

// Calculate menghitung ulang seluruh baris run DRAFT dari data absensi, cuti,
// dan gaji efektif. Karyawan tanpa gaji efektif pada akhir periode dilewati,
// bukan digagalkan, supaya satu data master bolong tidak memblokir payroll
// satu cabang.
func (s *service) Calculate(ctx context.Context, companyID, id string) (CalculateResultResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CalculateResultResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Run dikunci selama kalkulasi; Post yang menyela akan menunggu di
	// FOR UPDATE, jadi hasil upsert tidak pernah mendarat di run POSTED.
	run, err := lockDraftRun(ctx, qtx, companyID, id)
	if err != nil {
		return CalculateResultResponse{}, err
	}

	period, err := s.repo.FindPeriod(ctx, companyID, run.PeriodID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CalculateResultResponse{}, payrollrunerrors.ErrPeriodNotFound
		}
		return CalculateResultResponse{}, err
	}

	employees, err := s.repo.ListActiveEmployeesByBranch(ctx, companyID, period.BranchID.String())
	if err != nil {
		return CalculateResultResponse{}, err
	}

	result := CalculateResultResponse{RunID: run.ID.String()}
	for _, emp := range employees {
		salary, err := s.salaries.FindEffectiveByEmployee(ctx, emp.ID.String(), period.EndDate)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.EmployeesSkipped++
				s.logger.Warn("calculate payroll run skipped employee without effective salary",
					zap.String("run_id", run.ID.String()),
					zap.String("employee_id", emp.ID.String()),
				)
				continue
			}
			return CalculateResultResponse{}, err
		}

		input, err := s.buildCalcInput(ctx, companyID, emp, salary.BaseSalary, period)
		if err != nil {
			return CalculateResultResponse{}, err
		}

		breakdown := payrollevidence.ComputeBreakdown(s.policy, input)

		line := &PayrollRunLine{
			ID:         uuid.New(),
			CompanyID:  run.CompanyID,
			RunID:      run.ID,
			EmployeeID: emp.ID,
			Amount:     breakdown.Net,
		}
		if err := qtx.UpsertLine(ctx, line); err != nil {
			s.logger.Error("calculate payroll run upsert line failed",
				zap.String("run_id", run.ID.String()),
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			return CalculateResultResponse{}, err
		}
		result.LinesUpserted++
	}

	if err := tx.Commit(); err != nil {
		return CalculateResultResponse{}, err
	}

	s.logger.Info("calculate payroll run success",
		zap.String("request_id", rid),
		zap.String("run_id", run.ID.String()),
		zap.Int("lines_upserted", result.LinesUpserted),
		zap.Int("employees_skipped", result.EmployeesSkipped),
	)

	return result, nil
}

func (s *service) buildCalcInput(
	ctx context.Context,
	companyID string,
	emp EmployeeLite,
	baseSalary int64,
	period *PeriodInfo,
) (payrollevidence.CalcInput, error) {
	attendances, err := s.attendances.FindByEmployeeAndDateRange(
		ctx, companyID, emp.ID.String(), period.StartDate, period.EndDate)
	if err != nil {
		return payrollevidence.CalcInput{}, err
	}
	attendanceByDate := make(map[string]string, len(attendances))
	for _, att := range attendances {
		attendanceByDate[att.AttendanceDate.Format("2006-01-02")] = att.Status
	}

	leaves, err := s.leaves.FindApprovedByEmployeeAndDateRange(
		ctx, companyID, emp.ID.String(), period.StartDate, period.EndDate)
	if err != nil {
		return payrollevidence.CalcInput{}, err
	}
	leaveDates := make(map[string]bool)
	for _, lv := range leaves {
		start, end := lv.StartDate, lv.EndDate
		if start.Before(period.StartDate) {
			start = period.StartDate
		}
		if end.After(period.EndDate) {
			end = period.EndDate
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			leaveDates[d.Format("2006-01-02")] = true
		}
	}

	return payrollevidence.CalcInput{
		PeriodStart:      period.StartDate,
		PeriodEnd:        period.EndDate,
		BaseSalary:       baseSalary,
		Allowance:        emp.Allowance,
		AttendanceByDate: attendanceByDate,
		LeaveDates:       leaveDates,
	}, nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payrollrunerrors.ErrRunNotFound
		}
		return err
	}
	if run.Status == StatusPosted {
		return payrollrunerrors.ErrRunAlreadyPosted
	}

	if err := s.repo.DeleteWithLines(ctx, companyID, id); err != nil {
		s.logger.Error("delete payroll run failed", zap.String("run_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("delete payroll run success",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("run_id", id),
	)
	return nil
}

func (s *service) CreateLine(
	ctx context.Context,
	companyID, runID string,
	req CreateRunLineRequest,
) (PayrollRunLineResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunLineResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := lockDraftRun(ctx, qtx, companyID, runID)
	if err != nil {
		return PayrollRunLineResponse{}, err
	}

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollRunLineResponse{}, payrollrunerrors.ErrInvalidEmployeeID
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return PayrollRunLineResponse{}, err
	}
	if !belongs {
		return PayrollRunLineResponse{}, payrollrunerrors.ErrEmployeeNotInCompany
	}

	line := &PayrollRunLine{
		ID:         uuid.New(),
		CompanyID:  run.CompanyID,
		RunID:      run.ID,
		EmployeeID: employeeUUID,
		Amount:     req.Amount,
		Note:       req.Note,
	}

	if err := qtx.CreateLine(ctx, line); err != nil {
		s.logger.Error("create payroll run line persist failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return PayrollRunLineResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PayrollRunLineResponse{}, err
	}

	return mapLineToResponse(*line), nil
}

func (s *service) UpdateLine(
	ctx context.Context,
	companyID, runID, lineID string,
	req UpdateRunLineRequest,
) (PayrollRunLineResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunLineResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := lockDraftRun(ctx, qtx, companyID, runID); err != nil {
		return PayrollRunLineResponse{}, err
	}

	line, err := qtx.FindLineByID(ctx, companyID, runID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunLineResponse{}, payrollrunerrors.ErrLineNotFound
		}
		return PayrollRunLineResponse{}, err
	}

	line.Amount = req.Amount
	line.Note = req.Note

	if err := qtx.UpdateLine(ctx, line); err != nil {
		s.logger.Error("update payroll run line persist failed",
			zap.String("line_id", lineID),
			zap.Error(err),
		)
		return PayrollRunLineResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return PayrollRunLineResponse{}, err
	}

	return mapLineToResponse(*line), nil
}

func (s *service) DeleteLine(ctx context.Context, companyID, runID, lineID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := lockDraftRun(ctx, qtx, companyID, runID); err != nil {
		return err
	}

	if _, err := qtx.FindLineByID(ctx, companyID, runID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payrollrunerrors.ErrLineNotFound
		}
		return err
	}

	if err := qtx.DeleteLine(ctx, companyID, runID, lineID); err != nil {
		return err
	}
	return tx.Commit()
}

// lockDraftRun mengunci baris run dengan FOR UPDATE lalu memastikan statusnya
// masih DRAFT. Seluruh mutasi baris lewat sini: pengecekan tanpa lock bisa
// disela Post yang commit, sehingga mutasi mendarat di run POSTED.
func lockDraftRun(ctx context.Context, qtx Repository, companyID, runID string) (*PayrollRun, error) {
	run, err := qtx.FindByIDForUpdate(ctx, companyID, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrRunNotFound
		}
		return nil, err
	}
	if run.Status != StatusDraft {
		return nil, payrollrunerrors.ErrRunNotDraft
	}
	return run, nil
}

func mapRunToResponse(run PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:        run.ID.String(),
		CompanyID: run.CompanyID.String(),
		PeriodID:  run.PeriodID.String(),
		RunNo:     run.RunNo,
		Status:    run.Status,
		CreatedBy: run.CreatedBy.String(),
	}
	if run.PostedBy != nil {
		postedBy := run.PostedBy.String()
		resp.PostedBy = &postedBy
	}
	if run.PostedAt != nil {
		postedAt := run.PostedAt.UTC().Format(time.RFC3339)
		resp.PostedAt = &postedAt
	}
	if len(run.Lines) > 0 {
		resp.Lines = mapLinesToResponse(run.Lines)
	}
	return resp
}

func mapLineToResponse(line PayrollRunLine) PayrollRunLineResponse {
	return PayrollRunLineResponse{
		ID:         line.ID.String(),
		RunID:      line.RunID.String(),
		EmployeeID: line.EmployeeID.String(),
		Amount:     line.Amount,
		Note:       line.Note,
	}
}

func mapLinesToResponse(lines []PayrollRunLine) []PayrollRunLineResponse {
	responses := make([]PayrollRunLineResponse, 0, len(lines))
	for _, line := range lines {
		responses = append(responses, mapLineToResponse(line))
	}
	return responses
}
