package payrollrun

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-erp/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeriodInfo adalah potongan data periode yang dibutuhkan modul run;
// cukup untuk guard status dan rentang tanggal kalkulasi.
type PeriodInfo struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Status    string
	StartDate time.Time
	EndDate   time.Time
}

type EmployeeLite struct {
	ID        uuid.UUID
	Allowance int64
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *PayrollRun) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollRun, error)
	// FindByIDForUpdate mengunci baris run dengan SELECT ... FOR UPDATE.
	// Hanya valid di dalam transaksi (WithTx).
	FindByIDForUpdate(ctx context.Context, companyID string, id string) (*PayrollRun, error)
	FindPeriod(ctx context.Context, companyID, periodID string) (*PeriodInfo, error)
	RunNoExists(ctx context.Context, companyID, runNo string) (bool, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
	ListActiveEmployeesByBranch(ctx context.Context, companyID, branchID string) ([]EmployeeLite, error)
	CountLinesByRun(ctx context.Context, runID string) (int64, error)
	FindLinesByRun(ctx context.Context, companyID, runID string) ([]PayrollRunLine, error)
	FindLineByID(ctx context.Context, companyID, runID, lineID string) (*PayrollRunLine, error)
	CreateLine(ctx context.Context, line *PayrollRunLine) error
	UpdateLine(ctx context.Context, line *PayrollRunLine) error
	DeleteLine(ctx context.Context, companyID, runID, lineID string) error
	// UpsertLine menulis satu baris per (run, employee); amount/note diganti
	// bila sudah ada.
	UpsertLine(ctx context.Context, line *PayrollRunLine) error
	MarkPosted(ctx context.Context, run *PayrollRun) error
	DeleteWithLines(ctx context.Context, companyID, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Lines").
		First(&run, "id = ?", id).Error
	return &run, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID string, id string) (*PayrollRun, error) {
	if r.tx == nil {
		return nil, errors.New("payrollrun: FindByIDForUpdate requires a transaction")
	}

	query := `
SELECT id::text, company_id::text, period_id::text, run_no, status, created_by::text
FROM payroll_runs
WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.tx.QueryRowContext(ctx, query, id, companyID)

	var (
		run    PayrollRun
		rawIDs [4]string
	)
	if err := row.Scan(&rawIDs[0], &rawIDs[1], &rawIDs[2], &run.RunNo, &run.Status, &rawIDs[3]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	for i, dst := range []*uuid.UUID{&run.ID, &run.CompanyID, &run.PeriodID, &run.CreatedBy} {
		parsed, err := uuid.Parse(rawIDs[i])
		if err != nil {
			return nil, err
		}
		*dst = parsed
	}
	return &run, nil
}

func (r *repository) FindPeriod(ctx context.Context, companyID, periodID string) (*PeriodInfo, error) {
	var row struct {
		ID        string
		BranchID  string
		Status    string
		StartDate time.Time
		EndDate   time.Time
	}
	err := r.db.WithContext(ctx).
		Table("payroll_periods").
		Select("id::text AS id, branch_id::text AS branch_id, status, start_date, end_date").
		Where("id = ?", periodID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	info := &PeriodInfo{
		Status:    row.Status,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
	}
	if info.ID, err = uuid.Parse(row.ID); err != nil {
		return nil, err
	}
	if info.BranchID, err = uuid.Parse(row.BranchID); err != nil {
		return nil, err
	}
	return info, nil
}

func (r *repository) RunNoExists(ctx context.Context, companyID, runNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Where("company_id = ?", companyID).
		Where("run_no = ?", runNo).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListActiveEmployeesByBranch(ctx context.Context, companyID, branchID string) ([]EmployeeLite, error) {
	var rows []struct {
		ID        string
		Allowance int64
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("id::text AS id, allowance").
		Where("company_id = ?", companyID).
		Where("branch_id = ?", branchID).
		Where("employment_status = ?", "ACTIVE").
		Where("deleted_at IS NULL").
		Order("employee_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	employees := make([]EmployeeLite, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, err
		}
		employees = append(employees, EmployeeLite{ID: id, Allowance: row.Allowance})
	}
	return employees, nil
}

func (r *repository) CountLinesByRun(ctx context.Context, runID string) (int64, error) {
	if r.tx != nil {
		var count int64
		err := r.tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM payroll_run_lines WHERE run_id = $1`, runID,
		).Scan(&count)
		return count, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRunLine{}).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}

func (r *repository) FindLinesByRun(ctx context.Context, companyID, runID string) ([]PayrollRunLine, error) {
	if r.tx != nil {
		rows, err := r.tx.QueryContext(ctx, `
SELECT id::text, company_id::text, run_id::text, employee_id::text, amount, note
FROM payroll_run_lines
WHERE company_id = $1 AND run_id = $2
ORDER BY created_at ASC
`, companyID, runID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var lines []PayrollRunLine
		for rows.Next() {
			line, err := scanLine(rows)
			if err != nil {
				return nil, err
			}
			lines = append(lines, *line)
		}
		return lines, rows.Err()
	}

	var lines []PayrollRunLine
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *repository) FindLineByID(ctx context.Context, companyID, runID, lineID string) (*PayrollRunLine, error) {
	if r.tx != nil {
		row := r.tx.QueryRowContext(ctx, `
SELECT id::text, company_id::text, run_id::text, employee_id::text, amount, note
FROM payroll_run_lines
WHERE company_id = $1 AND run_id = $2 AND id = $3
`, companyID, runID, lineID)
		line, err := scanLine(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return line, err
	}

	var line PayrollRunLine
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("run_id = ?", runID).
		First(&line, "id = ?", lineID).Error
	return &line, err
}

func (r *repository) CreateLine(ctx context.Context, line *PayrollRunLine) error {
	if r.tx != nil {
		var note any
		if line.Note != nil {
			note = *line.Note
		}
		_, err := r.tx.ExecContext(ctx, `
INSERT INTO payroll_run_lines (id, company_id, run_id, employee_id, amount, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
`, line.ID.String(), line.CompanyID.String(), line.RunID.String(),
			line.EmployeeID.String(), line.Amount, note,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateLine(ctx context.Context, line *PayrollRunLine) error {
	if r.tx != nil {
		var note any
		if line.Note != nil {
			note = *line.Note
		}
		_, err := r.tx.ExecContext(ctx, `
UPDATE payroll_run_lines
SET amount = $2, note = $3, updated_at = NOW()
WHERE id = $1
`, line.ID.String(), line.Amount, note)
		return err
	}
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) DeleteLine(ctx context.Context, companyID, runID, lineID string) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
DELETE FROM payroll_run_lines
WHERE company_id = $1 AND run_id = $2 AND id = $3
`, companyID, runID, lineID)
		return err
	}
	return r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("run_id = ?", runID).
		Delete(&PayrollRunLine{}, "id = ?", lineID).Error
}

// scanLine membaca satu baris hasil query raw menjadi PayrollRunLine.
func scanLine(row interface{ Scan(...any) error }) (*PayrollRunLine, error) {
	var (
		line   PayrollRunLine
		rawIDs [4]string
	)
	if err := row.Scan(&rawIDs[0], &rawIDs[1], &rawIDs[2], &rawIDs[3], &line.Amount, &line.Note); err != nil {
		return nil, err
	}
	for i, dst := range []*uuid.UUID{&line.ID, &line.CompanyID, &line.RunID, &line.EmployeeID} {
		parsed, err := uuid.Parse(rawIDs[i])
		if err != nil {
			return nil, err
		}
		*dst = parsed
	}
	return &line, nil
}

func (r *repository) UpsertLine(ctx context.Context, line *PayrollRunLine) error {
	query := `
INSERT INTO payroll_run_lines (id, company_id, run_id, employee_id, amount, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
ON CONFLICT (run_id, employee_id) DO UPDATE
SET amount = EXCLUDED.amount, note = EXCLUDED.note, updated_at = NOW()
`
	var note any
	if line.Note != nil {
		note = *line.Note
	}

	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query,
			line.ID.String(), line.CompanyID.String(), line.RunID.String(),
			line.EmployeeID.String(), line.Amount, note,
		)
		return err
	}
	return r.db.WithContext(ctx).Exec(query,
		line.ID.String(), line.CompanyID.String(), line.RunID.String(),
		line.EmployeeID.String(), line.Amount, note,
	).Error
}

func (r *repository) MarkPosted(ctx context.Context, run *PayrollRun) error {
	if r.tx == nil {
		return errors.New("payrollrun: MarkPosted requires a transaction")
	}

	query := `
UPDATE payroll_runs
SET status = $3, posted_by = $4, posted_at = $5, updated_at = NOW()
WHERE id = $1 AND company_id = $2
`
	var postedBy any
	if run.PostedBy != nil {
		postedBy = run.PostedBy.String()
	}
	_, err := r.tx.ExecContext(ctx, query,
		run.ID.String(), run.CompanyID.String(),
		run.Status, postedBy, run.PostedAt,
	)
	return err
}

func (r *repository) DeleteWithLines(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("company_id = ?", companyID).
			Where("run_id = ?", id).
			Delete(&PayrollRunLine{}).Error; err != nil {
			return err
		}
		return tx.
			Scopes(tenant.Scope(companyID)).
			Delete(&PayrollRun{}, "id = ?", id).Error
	})
}
