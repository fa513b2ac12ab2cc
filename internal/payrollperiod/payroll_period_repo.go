package payrollperiod

import (
	"context"
	"database/sql"
	"errors"

	"go-erp/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, period *PayrollPeriod) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error)
	// FindByIDForUpdate mengunci baris periode dengan SELECT ... FOR UPDATE.
	// Hanya valid di dalam transaksi (WithTx).
	FindByIDForUpdate(ctx context.Context, companyID string, id string) (*PayrollPeriod, error)
	BranchBelongsToCompany(ctx context.Context, companyID, branchID string) (bool, error)
	CodeExists(ctx context.Context, companyID, branchID, periodCode string, excludeID *string) (bool, error)
	CountRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error)
	CountDraftRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error)
	Update(ctx context.Context, period *PayrollPeriod) error
	Delete(ctx context.Context, companyID string, id string) error
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

func (r *repository) Create(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error) {
	var periods []PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC, period_code DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	return &period, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID string, id string) (*PayrollPeriod, error) {
	if r.tx == nil {
		return nil, errors.New("payrollperiod: FindByIDForUpdate requires a transaction")
	}

	query := `
SELECT id::text, company_id::text, branch_id::text, period_code,
       start_date, end_date, status, created_by::text
FROM payroll_periods
WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.tx.QueryRowContext(ctx, query, id, companyID)

	var (
		p      PayrollPeriod
		rawIDs [4]string
	)
	if err := row.Scan(
		&rawIDs[0], &rawIDs[1], &rawIDs[2], &p.PeriodCode,
		&p.StartDate, &p.EndDate, &p.Status, &rawIDs[3],
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	for i, dst := range []*uuid.UUID{&p.ID, &p.CompanyID, &p.BranchID, &p.CreatedBy} {
		parsed, err := uuid.Parse(rawIDs[i])
		if err != nil {
			return nil, err
		}
		*dst = parsed
	}
	return &p, nil
}

func (r *repository) BranchBelongsToCompany(ctx context.Context, companyID, branchID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("branches").
		Where("id = ?", branchID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CodeExists(ctx context.Context, companyID, branchID, periodCode string, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&PayrollPeriod{}).
		Where("company_id = ?", companyID).
		Where("branch_id = ?", branchID).
		Where("period_code = ?", periodCode)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) CountRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payroll_runs").
		Where("company_id = ?", companyID).
		Where("period_id = ?", periodID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) CountDraftRunsByPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	if r.tx != nil {
		query := `
SELECT COUNT(*)
FROM payroll_runs
WHERE company_id = $1 AND period_id = $2 AND status = 'DRAFT' AND deleted_at IS NULL
`
		var count int64
		err := r.tx.QueryRowContext(ctx, query, companyID, periodID).Scan(&count)
		return count, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table("payroll_runs").
		Where("company_id = ?", companyID).
		Where("period_id = ?", periodID).
		Where("status = ?", "DRAFT").
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, period *PayrollPeriod) error {
	if r.tx != nil {
		query := `
UPDATE payroll_periods
SET period_code = $3, start_date = $4, end_date = $5, status = $6,
    closed_by = $7, closed_at = $8, updated_at = NOW()
WHERE id = $1 AND company_id = $2
`
		var closedBy any
		if period.ClosedBy != nil {
			closedBy = period.ClosedBy.String()
		}
		_, err := r.tx.ExecContext(ctx, query,
			period.ID.String(), period.CompanyID.String(),
			period.PeriodCode, period.StartDate, period.EndDate, period.Status,
			closedBy, period.ClosedAt,
		)
		return err
	}
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayrollPeriod{}, "id = ?", id).Error
}
