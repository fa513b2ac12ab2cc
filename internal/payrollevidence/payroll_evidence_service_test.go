package payrollevidence_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-erp/internal/payrollevidence"
	payrollevidenceerrors "go-erp/internal/payrollevidence/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEvidenceRepository struct {
	findRunLineContextFn      func(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error)
	findEmployeeInfoFn        func(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error)
	findEffectiveBaseSalaryFn func(ctx context.Context, employeeID string, onDate time.Time) (int64, error)
	listAttendanceStatusesFn  func(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error)
	listApprovedLeaveDatesFn  func(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]bool, error)
}

func (f *fakeEvidenceRepository) FindRunLineContext(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error) {
	if f.findRunLineContextFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findRunLineContextFn(ctx, companyID, runID, employeeID)
}

func (f *fakeEvidenceRepository) FindEmployeeInfo(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error) {
	if f.findEmployeeInfoFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findEmployeeInfoFn(ctx, companyID, employeeID)
}

func (f *fakeEvidenceRepository) FindEffectiveBaseSalary(ctx context.Context, employeeID string, onDate time.Time) (int64, error) {
	if f.findEffectiveBaseSalaryFn == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return f.findEffectiveBaseSalaryFn(ctx, employeeID, onDate)
}

func (f *fakeEvidenceRepository) ListAttendanceStatuses(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error) {
	if f.listAttendanceStatusesFn == nil {
		return map[string]string{}, nil
	}
	return f.listAttendanceStatusesFn(ctx, companyID, employeeID, from, to)
}

func (f *fakeEvidenceRepository) ListApprovedLeaveDates(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]bool, error) {
	if f.listApprovedLeaveDatesFn == nil {
		return map[string]bool{}, nil
	}
	return f.listApprovedLeaveDatesFn(ctx, companyID, employeeID, from, to)
}

func evidenceFixture() (*payrollevidence.RunLineContext, *payrollevidence.EmployeeInfo) {
	lineCtx := &payrollevidence.RunLineContext{
		RunID:      uuid.New().String(),
		RunNo:      "RUN-00007",
		RunStatus:  "POSTED",
		LineID:     uuid.New().String(),
		EmployeeID: uuid.New().String(),
		Amount:     5_750_000_00,
		PeriodID:   uuid.New().String(),
		PeriodCode: "JKT-2026-03",
		// Maret 2026: 1 Maret jatuh hari Minggu, default policy libur Minggu
		// saja, jadi ada 26 hari kerja.
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	info := &payrollevidence.EmployeeInfo{
		FullName:       "Siti Rahma",
		EmployeeNumber: "EMP-000042",
		Position:       "Staff Finance",
		Allowance:      550_000_00,
	}
	return lineCtx, info
}

// absensi penuh untuk seluruh hari kerja periode, agar tidak ada potongan.
func fullAttendance(from, to time.Time, policy payrollevidence.Policy) map[string]string {
	statuses := make(map[string]string)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if policy.WeekendDays[d.Weekday()] {
			continue
		}
		statuses[d.Format("2006-01-02")] = "PRESENT"
	}
	return statuses
}

func TestService_GetEvidence(t *testing.T) {
	policy := payrollevidence.DefaultPolicy()
	lineCtx, info := evidenceFixture()

	repo := &fakeEvidenceRepository{
		findRunLineContextFn: func(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error) {
			return lineCtx, nil
		},
		findEmployeeInfoFn: func(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error) {
			return info, nil
		},
		findEffectiveBaseSalaryFn: func(ctx context.Context, employeeID string, onDate time.Time) (int64, error) {
			assert.Equal(t, lineCtx.PeriodEnd, onDate)
			return 5_200_000_00, nil
		},
		listAttendanceStatusesFn: func(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error) {
			return fullAttendance(from, to, policy), nil
		},
	}

	svc := payrollevidence.NewService(repo, policy)

	res, err := svc.GetEvidence(context.Background(), uuid.New().String(), lineCtx.RunID, lineCtx.EmployeeID)

	assert.NoError(t, err)
	assert.Equal(t, "RUN-00007", res.RunNo)
	assert.Equal(t, "JKT-2026-03", res.PeriodCode)
	assert.Equal(t, "2026-03-01", res.PeriodStart)
	assert.Equal(t, "2026-03-31", res.PeriodEnd)
	assert.Equal(t, int64(5_200_000_00), res.BaseSalary)

	assert.Equal(t, 26, res.Breakdown.WorkingDays)
	assert.Equal(t, 26, res.Breakdown.PresentDays)
	assert.Equal(t, 0, res.Breakdown.AbsentDays)
	assert.Equal(t, int64(20_000_000), res.Breakdown.DailyRate)
	assert.Equal(t, int64(5_200_000_00), res.Breakdown.BasePay)
	assert.Equal(t, int64(5_750_000_00), res.Breakdown.Net)
	assert.Equal(t, int64(5_750_000_00), res.Breakdown.StoredAmount)
	assert.Equal(t, int64(0), res.Breakdown.Diff)
}

func TestService_GetEvidence_DiffOnManualEdit(t *testing.T) {
	policy := payrollevidence.DefaultPolicy()
	lineCtx, info := evidenceFixture()
	lineCtx.Amount = 6_000_000_00 // diedit manual di atas hasil kalkulasi

	repo := &fakeEvidenceRepository{
		findRunLineContextFn: func(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error) {
			return lineCtx, nil
		},
		findEmployeeInfoFn: func(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error) {
			return info, nil
		},
		findEffectiveBaseSalaryFn: func(ctx context.Context, employeeID string, onDate time.Time) (int64, error) {
			return 5_200_000_00, nil
		},
		listAttendanceStatusesFn: func(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error) {
			return fullAttendance(from, to, policy), nil
		},
	}

	svc := payrollevidence.NewService(repo, policy)

	res, err := svc.GetEvidence(context.Background(), uuid.New().String(), lineCtx.RunID, lineCtx.EmployeeID)

	assert.NoError(t, err)
	assert.Equal(t, int64(5_750_000_00), res.Breakdown.Net)
	assert.Equal(t, int64(6_000_000_00), res.Breakdown.StoredAmount)
	assert.Equal(t, int64(250_000_00), res.Breakdown.Diff)
}

func TestService_GetEvidence_LineNotFound(t *testing.T) {
	svc := payrollevidence.NewService(&fakeEvidenceRepository{}, payrollevidence.DefaultPolicy())

	_, err := svc.GetEvidence(context.Background(), uuid.New().String(), uuid.New().String(), uuid.New().String())

	assert.ErrorIs(t, err, payrollevidenceerrors.ErrEvidenceNotFound)
}

func TestService_GetEvidence_NoEffectiveSalary(t *testing.T) {
	lineCtx, info := evidenceFixture()

	repo := &fakeEvidenceRepository{
		findRunLineContextFn: func(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error) {
			return lineCtx, nil
		},
		findEmployeeInfoFn: func(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error) {
			return info, nil
		},
	}

	svc := payrollevidence.NewService(repo, payrollevidence.DefaultPolicy())

	_, err := svc.GetEvidence(context.Background(), uuid.New().String(), lineCtx.RunID, lineCtx.EmployeeID)

	assert.ErrorIs(t, err, payrollevidenceerrors.ErrNoEffectiveSalary)
}

func TestService_RenderPayslip(t *testing.T) {
	policy := payrollevidence.DefaultPolicy()
	lineCtx, info := evidenceFixture()

	repo := &fakeEvidenceRepository{
		findRunLineContextFn: func(ctx context.Context, companyID, runID, employeeID string) (*payrollevidence.RunLineContext, error) {
			return lineCtx, nil
		},
		findEmployeeInfoFn: func(ctx context.Context, companyID, employeeID string) (*payrollevidence.EmployeeInfo, error) {
			return info, nil
		},
		findEffectiveBaseSalaryFn: func(ctx context.Context, employeeID string, onDate time.Time) (int64, error) {
			return 5_200_000_00, nil
		},
		listAttendanceStatusesFn: func(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error) {
			return fullAttendance(from, to, policy), nil
		},
	}

	svc := payrollevidence.NewService(repo, policy)

	pdf, filename, err := svc.RenderPayslip(context.Background(), uuid.New().String(), lineCtx.RunID, lineCtx.EmployeeID)

	assert.NoError(t, err)
	assert.Equal(t, "payslip-RUN-00007-EMP-000042.pdf", filename)
	assert.NotEmpty(t, pdf)
	assert.True(t, strings.HasPrefix(string(pdf[:5]), "%PDF-"))
}
