package payrollevidence

import (
	"context"
	"errors"
	"fmt"

	payrollevidenceerrors "go-erp/internal/payrollevidence/errors"
	"go-erp/internal/shared/contextutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetEvidence(ctx context.Context, companyID, runID, employeeID string) (EvidenceResponse, error)
	RenderPayslip(ctx context.Context, companyID, runID, employeeID string) ([]byte, string, error)
}

type service struct {
	repo   Repository
	policy Policy
	logger *zap.Logger
}

func NewService(repo Repository, policy Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("payrollevidence.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollevidence.service")
	}
	return &service{repo: repo, policy: policy, logger: l}
}

// GetEvidence menghitung ulang satu baris payroll dari data absensi dan cuti,
// lalu menyandingkan hasilnya dengan amount tersimpan. Diff bukan nol berarti
// baris itu diedit manual atau data pendukungnya berubah setelah kalkulasi.
func (s *service) GetEvidence(ctx context.Context, companyID, runID, employeeID string) (EvidenceResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	lineCtx, err := s.repo.FindRunLineContext(ctx, companyID, runID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvidenceResponse{}, payrollevidenceerrors.ErrEvidenceNotFound
		}
		return EvidenceResponse{}, err
	}

	info, err := s.repo.FindEmployeeInfo(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvidenceResponse{}, payrollevidenceerrors.ErrEmployeeNotFound
		}
		return EvidenceResponse{}, err
	}

	baseSalary, err := s.repo.FindEffectiveBaseSalary(ctx, employeeID, lineCtx.PeriodEnd)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvidenceResponse{}, payrollevidenceerrors.ErrNoEffectiveSalary
		}
		return EvidenceResponse{}, err
	}

	attendanceByDate, err := s.repo.ListAttendanceStatuses(
		ctx, companyID, employeeID, lineCtx.PeriodStart, lineCtx.PeriodEnd)
	if err != nil {
		return EvidenceResponse{}, err
	}
	leaveDates, err := s.repo.ListApprovedLeaveDates(
		ctx, companyID, employeeID, lineCtx.PeriodStart, lineCtx.PeriodEnd)
	if err != nil {
		return EvidenceResponse{}, err
	}

	breakdown := ComputeBreakdown(s.policy, CalcInput{
		PeriodStart:      lineCtx.PeriodStart,
		PeriodEnd:        lineCtx.PeriodEnd,
		BaseSalary:       baseSalary,
		Allowance:        info.Allowance,
		AttendanceByDate: attendanceByDate,
		LeaveDates:       leaveDates,
		StoredAmount:     lineCtx.Amount,
	})

	if breakdown.Diff != 0 {
		s.logger.Info("payroll evidence diff detected",
			zap.String("request_id", rid),
			zap.String("run_id", runID),
			zap.String("employee_id", employeeID),
			zap.Int64("stored_amount", breakdown.StoredAmount),
			zap.Int64("net", breakdown.Net),
			zap.Int64("diff", breakdown.Diff),
		)
	}

	return EvidenceResponse{
		RunID:       lineCtx.RunID,
		RunNo:       lineCtx.RunNo,
		RunStatus:   lineCtx.RunStatus,
		LineID:      lineCtx.LineID,
		EmployeeID:  lineCtx.EmployeeID,
		PeriodID:    lineCtx.PeriodID,
		PeriodCode:  lineCtx.PeriodCode,
		PeriodStart: lineCtx.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   lineCtx.PeriodEnd.Format("2006-01-02"),
		BaseSalary:  baseSalary,
		Breakdown:   breakdown,
	}, nil
}

func (s *service) RenderPayslip(ctx context.Context, companyID, runID, employeeID string) ([]byte, string, error) {
	evidence, err := s.GetEvidence(ctx, companyID, runID, employeeID)
	if err != nil {
		return nil, "", err
	}

	info, err := s.repo.FindEmployeeInfo(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", payrollevidenceerrors.ErrEmployeeNotFound
		}
		return nil, "", err
	}

	pdf, err := renderPayslipPDF(evidence, *info)
	if err != nil {
		s.logger.Error("render payslip pdf failed",
			zap.String("run_id", runID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, "", err
	}

	filename := fmt.Sprintf("payslip-%s-%s.pdf", evidence.RunNo, info.EmployeeNumber)
	return pdf, filename, nil
}
