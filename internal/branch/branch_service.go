package branch

import (
	"context"
	"database/sql"
	"errors"

	brancherrors "go-erp/internal/branch/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, companyID string, req CreateBranchRequest) (BranchResponse, error)
	GetAll(ctx context.Context, companyID string) ([]BranchResponse, error)
	GetByID(ctx context.Context, companyID, id string) (BranchResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateBranchRequest) (BranchResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateBranchRequest,
) (BranchResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BranchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b := &Branch{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		Name:      req.Name,
		Code:      req.Code,
	}

	if err := qtx.Create(ctx, b); err != nil {
		return BranchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BranchResponse{}, err
	}

	return mapToResponse(*b), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]BranchResponse, error) {
	branches, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(branches), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (BranchResponse, error) {
	b, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BranchResponse{}, brancherrors.ErrBranchNotFound
		}
		return BranchResponse{}, err
	}

	return mapToResponse(*b), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateBranchRequest,
) (BranchResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BranchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BranchResponse{}, brancherrors.ErrBranchNotFound
		}
		return BranchResponse{}, err
	}

	b.Name = req.Name
	b.Code = req.Code

	if err := qtx.Update(ctx, b); err != nil {
		return BranchResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return BranchResponse{}, err
	}

	return mapToResponse(*b), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDAndCompany(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return brancherrors.ErrBranchNotFound
		}
		return err
	}

	refs, err := qtx.CountPeriodsByBranch(ctx, companyID, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return brancherrors.ErrBranchReferencedByPeriods
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}

	return tx.Commit()
}

func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_branch_company_code" {
		return brancherrors.ErrBranchCodeAlreadyExists
	}
	return err
}

func mapToResponse(b Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID.String(),
		CompanyID: b.CompanyID.String(),
		Name:      b.Name,
		Code:      b.Code,
	}
}

func mapToListResponse(branches []Branch) []BranchResponse {
	res := make([]BranchResponse, len(branches))
	for i, b := range branches {
		res[i] = mapToResponse(b)
	}
	return res
}
