package branch_test

import (
	"context"
	"database/sql"
	"testing"

	"go-erp/internal/branch"
	brancherrors "go-erp/internal/branch/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBranchRepository struct {
	createFn               func(ctx context.Context, b *branch.Branch) error
	findAllByCompanyFn     func(ctx context.Context, companyID string) ([]branch.Branch, error)
	findByIDAndCompanyFn   func(ctx context.Context, companyID, id string) (*branch.Branch, error)
	countPeriodsByBranchFn func(ctx context.Context, companyID, branchID string) (int64, error)
	updateFn               func(ctx context.Context, b *branch.Branch) error
	deleteFn               func(ctx context.Context, companyID, id string) error
}

func (f *fakeBranchRepository) WithTx(tx *sql.Tx) branch.Repository { return f }

func (f *fakeBranchRepository) Create(ctx context.Context, b *branch.Branch) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, b)
}

func (f *fakeBranchRepository) FindAllByCompany(ctx context.Context, companyID string) ([]branch.Branch, error) {
	if f.findAllByCompanyFn == nil {
		return nil, nil
	}
	return f.findAllByCompanyFn(ctx, companyID)
}

func (f *fakeBranchRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*branch.Branch, error) {
	if f.findByIDAndCompanyFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByIDAndCompanyFn(ctx, companyID, id)
}

func (f *fakeBranchRepository) CountPeriodsByBranch(ctx context.Context, companyID, branchID string) (int64, error) {
	if f.countPeriodsByBranchFn == nil {
		return 0, nil
	}
	return f.countPeriodsByBranchFn(ctx, companyID, branchID)
}

func (f *fakeBranchRepository) Update(ctx context.Context, b *branch.Branch) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, b)
}

func (f *fakeBranchRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, companyID, id)
}

func setupBranchServiceTest(t *testing.T, repo *fakeBranchRepository) (branch.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return branch.NewService(db, repo), mock
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

func TestService_Create(t *testing.T) {
	companyID := uuid.New()

	var created *branch.Branch
	repo := &fakeBranchRepository{
		createFn: func(ctx context.Context, b *branch.Branch) error {
			created = b
			return nil
		},
	}

	svc, mock := setupBranchServiceTest(t, repo)
	expectTx(t, mock, true)

	res, err := svc.Create(context.Background(), companyID.String(), branch.CreateBranchRequest{
		Name: "Kantor Pusat Jakarta",
		Code: "JKT-01",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, companyID, created.CompanyID)
	assert.Equal(t, "JKT-01", res.Code)
	assert.Equal(t, "Kantor Pusat Jakarta", res.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_DuplicateCode(t *testing.T) {
	repo := &fakeBranchRepository{
		createFn: func(ctx context.Context, b *branch.Branch) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_branch_company_code"}
		},
	}

	svc, mock := setupBranchServiceTest(t, repo)
	expectTx(t, mock, false)

	_, err := svc.Create(context.Background(), uuid.New().String(), branch.CreateBranchRequest{
		Name: "Kantor Cabang Surabaya",
		Code: "JKT-01",
	})

	assert.ErrorIs(t, err, brancherrors.ErrBranchCodeAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_NotFound(t *testing.T) {
	repo := &fakeBranchRepository{
		updateFn: func(ctx context.Context, b *branch.Branch) error {
			t.Fatal("update should not be called")
			return nil
		},
	}

	svc, mock := setupBranchServiceTest(t, repo)
	expectTx(t, mock, false)

	_, err := svc.Update(context.Background(), uuid.New().String(), uuid.New().String(), branch.UpdateBranchRequest{
		Name: "Kantor Baru",
		Code: "BDG-01",
	})

	assert.ErrorIs(t, err, brancherrors.ErrBranchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Delete(t *testing.T) {
	companyID := uuid.New()
	branchID := uuid.New()

	existing := &branch.Branch{
		ID:        branchID,
		CompanyID: companyID,
		Name:      "Kantor Cabang Bandung",
		Code:      "BDG-01",
	}

	t.Run("success when no periods reference the branch", func(t *testing.T) {
		deleted := false
		repo := &fakeBranchRepository{
			findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*branch.Branch, error) {
				return existing, nil
			},
			countPeriodsByBranchFn: func(ctx context.Context, cid, bid string) (int64, error) {
				assert.Equal(t, branchID.String(), bid)
				return 0, nil
			},
			deleteFn: func(ctx context.Context, cid, id string) error {
				deleted = true
				return nil
			},
		}

		svc, mock := setupBranchServiceTest(t, repo)
		expectTx(t, mock, true)

		err := svc.Delete(context.Background(), companyID.String(), branchID.String())

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blocked while payroll periods still reference it", func(t *testing.T) {
		repo := &fakeBranchRepository{
			findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*branch.Branch, error) {
				return existing, nil
			},
			countPeriodsByBranchFn: func(ctx context.Context, cid, bid string) (int64, error) {
				return 3, nil
			},
			deleteFn: func(ctx context.Context, cid, id string) error {
				t.Fatal("delete should not be called")
				return nil
			},
		}

		svc, mock := setupBranchServiceTest(t, repo)
		expectTx(t, mock, false)

		err := svc.Delete(context.Background(), companyID.String(), branchID.String())

		assert.ErrorIs(t, err, brancherrors.ErrBranchReferencedByPeriods)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeBranchRepository{}

		svc, mock := setupBranchServiceTest(t, repo)
		expectTx(t, mock, false)

		err := svc.Delete(context.Background(), companyID.String(), uuid.New().String())

		assert.ErrorIs(t, err, brancherrors.ErrBranchNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
