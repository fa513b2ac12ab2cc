package payrollperiod

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-erp/internal/notification"
	payrollperioderrors "go-erp/internal/payrollperiod/errors"
	"go-erp/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PayrollPeriodResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PayrollPeriodResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	MarkProcessed(ctx context.Context, companyID, actorID, id string) (PayrollPeriodResponse, error)
	Close(ctx context.Context, companyID, actorID, id string) (PayrollPeriodResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	notifier notification.Publisher
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, notifier notification.Publisher, logger ...*zap.Logger) Service {
	l := zap.L().Named("payrollperiod.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollperiod.service")
	}
	return &service{db: db, repo: repo, notifier: notifier, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreatePayrollPeriodRequest,
) (PayrollPeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create payroll period requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("branch_id", req.BranchID),
		zap.String("period_code", req.PeriodCode),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrInvalidCompanyID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrInvalidActorID
	}
	branchUUID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrInvalidBranchID
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create payroll period begin tx failed", zap.Error(err))
		return PayrollPeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.BranchBelongsToCompany(ctx, companyID, req.BranchID)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	if !belongs {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrBranchNotInCompany
	}

	exists, err := qtx.CodeExists(ctx, companyID, req.BranchID, req.PeriodCode, nil)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	if exists {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodCodeAlreadyExists
	}

	period := &PayrollPeriod{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		BranchID:   branchUUID,
		PeriodCode: req.PeriodCode,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     StatusOpen,
		CreatedBy:  createdByUUID,
	}

	if err := qtx.Create(ctx, period); err != nil {
		s.logger.Error("create payroll period persist failed", zap.Error(err))
		return PayrollPeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollPeriodResponse{}, err
	}

	s.logger.Info("create payroll period success",
		zap.String("request_id", rid),
		zap.String("period_id", period.ID.String()),
		zap.String("period_code", period.PeriodCode),
	)

	return mapToResponse(*period), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PayrollPeriodResponse, error) {
	periods, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(periods), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PayrollPeriodResponse, error) {
	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodNotFound
		}
		return PayrollPeriodResponse{}, err
	}
	return mapToResponse(*period), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdatePayrollPeriodRequest,
) (PayrollPeriodResponse, error) {
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollPeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodNotFound
		}
		return PayrollPeriodResponse{}, err
	}

	if period.Status == StatusClosed {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodClosed
	}

	if req.PeriodCode != period.PeriodCode {
		exists, err := qtx.CodeExists(ctx, companyID, period.BranchID.String(), req.PeriodCode, &id)
		if err != nil {
			return PayrollPeriodResponse{}, err
		}
		if exists {
			return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodCodeAlreadyExists
		}
	}

	period.PeriodCode = req.PeriodCode
	period.StartDate = startDate
	period.EndDate = endDate

	if err := qtx.Update(ctx, period); err != nil {
		return PayrollPeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollPeriodResponse{}, err
	}

	return mapToResponse(*period), nil
}

func (s *service) MarkProcessed(ctx context.Context, companyID, actorID, id string) (PayrollPeriodResponse, error) {
	return s.transition(ctx, companyID, actorID, id, EventProcess)
}

func (s *service) Close(ctx context.Context, companyID, actorID, id string) (PayrollPeriodResponse, error) {
	return s.transition(ctx, companyID, actorID, id, EventClose)
}

// transition menjalankan event lifecycle dalam transaksi dengan row lock,
// sehingga dua transisi serentak pada periode yang sama diserialisasi dan
// yang kedua ditolak oleh tabel transisi.
func (s *service) transition(ctx context.Context, companyID, actorID, id, event string) (PayrollPeriodResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollPeriodResponse{}, payrollperioderrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("period transition begin tx failed", zap.Error(err))
		return PayrollPeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodNotFound
		}
		return PayrollPeriodResponse{}, err
	}

	next, ok := NextStatus(period.Status, event)
	if !ok {
		s.logger.Warn("period transition rejected",
			zap.String("period_id", id),
			zap.String("from_status", period.Status),
			zap.String("event", event),
		)
		return PayrollPeriodResponse{}, payrollperioderrors.ErrInvalidStatusTransition
	}

	if next == StatusClosed {
		draftRuns, err := qtx.CountDraftRunsByPeriod(ctx, companyID, id)
		if err != nil {
			return PayrollPeriodResponse{}, err
		}
		if draftRuns > 0 {
			return PayrollPeriodResponse{}, payrollperioderrors.ErrPeriodHasDraftRuns
		}

		now := time.Now().UTC()
		period.ClosedBy = &actorUUID
		period.ClosedAt = &now
	}

	period.Status = next

	if err := qtx.Update(ctx, period); err != nil {
		s.logger.Error("period transition persist failed",
			zap.String("period_id", id),
			zap.Error(err),
		)
		return PayrollPeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollPeriodResponse{}, err
	}

	s.logger.Info("period transition success",
		zap.String("period_id", id),
		zap.String("status", period.Status),
	)

	if next == StatusClosed && s.notifier != nil {
		msg := fmt.Sprintf("Payroll period %s closed", period.PeriodCode)
		if err := s.notifier.Publish(ctx, companyID, "payroll_period", id, msg); err != nil {
			s.logger.Warn("period close notification failed", zap.String("period_id", id), zap.Error(err))
		}
	}

	return mapToResponse(*period), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payrollperioderrors.ErrPeriodNotFound
		}
		return err
	}

	if period.Status == StatusClosed {
		return payrollperioderrors.ErrPeriodClosed
	}

	runs, err := qtx.CountRunsByPeriod(ctx, companyID, id)
	if err != nil {
		return err
	}
	if runs > 0 {
		return payrollperioderrors.ErrPeriodHasRuns
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	return tx.Commit()
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, payrollperioderrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, payrollperioderrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, payrollperioderrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func mapToResponse(period PayrollPeriod) PayrollPeriodResponse {
	resp := PayrollPeriodResponse{
		ID:         period.ID.String(),
		CompanyID:  period.CompanyID.String(),
		BranchID:   period.BranchID.String(),
		PeriodCode: period.PeriodCode,
		StartDate:  period.StartDate.Format("2006-01-02"),
		EndDate:    period.EndDate.Format("2006-01-02"),
		Status:     period.Status,
		CreatedBy:  period.CreatedBy.String(),
	}
	if period.ClosedBy != nil {
		v := period.ClosedBy.String()
		resp.ClosedBy = &v
	}
	if period.ClosedAt != nil {
		v := period.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &v
	}
	return resp
}

func mapToListResponse(periods []PayrollPeriod) []PayrollPeriodResponse {
	resp := make([]PayrollPeriodResponse, len(periods))
	for i, p := range periods {
		resp[i] = mapToResponse(p)
	}
	return resp
}
