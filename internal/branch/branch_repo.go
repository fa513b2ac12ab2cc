package branch

import (
	"context"
	"database/sql"

	"go-erp/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *Branch) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Branch, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Branch, error)
	CountPeriodsByBranch(ctx context.Context, companyID, branchID string) (int64, error)
	Update(ctx context.Context, b *Branch) error
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

func (r *repository) Create(ctx context.Context, b *Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Branch, error) {
	var branches []Branch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Branch, error) {
	var b Branch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) CountPeriodsByBranch(ctx context.Context, companyID, branchID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payroll_periods").
		Where("company_id = ?", companyID).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, b *Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Branch{}, "id = ?", id).Error
}
