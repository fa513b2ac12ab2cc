package payrollevidence

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RunLineContext adalah hasil join run + baris + periode untuk satu karyawan.
type RunLineContext struct {
	RunID       string
	RunNo       string
	RunStatus   string
	LineID      string
	EmployeeID  string
	Amount      int64
	PeriodID    string
	PeriodCode  string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type EmployeeInfo struct {
	FullName       string
	EmployeeNumber string
	Position       string
	Allowance      int64
}

// Repository membaca langsung tabel payroll dan master data. Modul ini
// read-only; seluruh mutasi ada di modul run.
//
type Repository interface {
	FindRunLineContext(ctx context.Context, companyID, runID, employeeID string) (*RunLineContext, error)
	FindEmployeeInfo(ctx context.Context, companyID, employeeID string) (*EmployeeInfo, error)
	FindEffectiveBaseSalary(ctx context.Context, employeeID string, onDate time.Time) (int64, error)
	ListAttendanceStatuses(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error)
	ListApprovedLeaveDates(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindRunLineContext(ctx context.Context, companyID, runID, employeeID string) (*RunLineContext, error) {
	var row struct {
		RunID       string
		RunNo       string
		RunStatus   string
		LineID      string
		EmployeeID  string
		Amount      int64
		PeriodID    string
		PeriodCode  string
		PeriodStart time.Time
		PeriodEnd   time.Time
	}
	err := r.db.WithContext(ctx).
		Table("payroll_run_lines AS l").
		Select(`r.id::text AS run_id, r.run_no, r.status AS run_status,
			l.id::text AS line_id, l.employee_id::text AS employee_id, l.amount,
			p.id::text AS period_id, p.period_code, p.start_date AS period_start, p.end_date AS period_end`).
		Joins("JOIN payroll_runs r ON r.id = l.run_id AND r.deleted_at IS NULL").
		Joins("JOIN payroll_periods p ON p.id = r.period_id AND p.deleted_at IS NULL").
		Where("l.company_id = ?", companyID).
		Where("l.run_id = ?", runID).
		Where("l.employee_id = ?", employeeID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &RunLineContext{
		RunID:       row.RunID,
		RunNo:       row.RunNo,
		RunStatus:   row.RunStatus,
		LineID:      row.LineID,
		EmployeeID:  row.EmployeeID,
		Amount:      row.Amount,
		PeriodID:    row.PeriodID,
		PeriodCode:  row.PeriodCode,
		PeriodStart: row.PeriodStart,
		PeriodEnd:   row.PeriodEnd,
	}, nil
}

func (r *repository) FindEmployeeInfo(ctx context.Context, companyID, employeeID string) (*EmployeeInfo, error) {
	var info EmployeeInfo
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("full_name, employee_number, position, allowance").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Take(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) FindEffectiveBaseSalary(ctx context.Context, employeeID string, onDate time.Time) (int64, error) {
	var baseSalary int64
	err := r.db.WithContext(ctx).
		Table("employee_salaries").
		Select("base_salary").
		Where("employee_id = ?", employeeID).
		Where("effective_date <= ?", onDate).
		Order("effective_date DESC").
		Limit(1).
		Take(&baseSalary).Error
	return baseSalary, err
}

func (r *repository) ListAttendanceStatuses(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]string, error) {
	var rows []struct {
		AttendanceDate time.Time
		Status         string
	}
	err := r.db.WithContext(ctx).
		Table("attendances").
		Select("attendance_date, status").
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("attendance_date BETWEEN ? AND ?", from, to).
		Where("deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]string, len(rows))
	for _, row := range rows {
		statuses[row.AttendanceDate.Format("2006-01-02")] = row.Status
	}
	return statuses, nil
}

func (r *repository) ListApprovedLeaveDates(ctx context.Context, companyID, employeeID string, from, to time.Time) (map[string]bool, error) {
	var rows []struct {
		StartDate time.Time
		EndDate   time.Time
	}
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select("start_date, end_date").
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status = ?", "APPROVED").
		Where("NOT (end_date < ? OR start_date > ?)", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Where("deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dates := make(map[string]bool)
	for _, row := range rows {
		start, end := row.StartDate, row.EndDate
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates[d.Format("2006-01-02")] = true
		}
	}
	return dates, nil
}
