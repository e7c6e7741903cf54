package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "palmcash-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate takes the row lock that serializes all mutations on
// a loan until the surrounding transaction commits. sqlite (tests only)
// has no row locks, so the clause is skipped there.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	tx := r.db.WithContext(ctx)
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out loanDomain.Loan
	res := tx.Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

// NextApplicationNumber issues LV-%06d numbers off the latest row. Callers
// run it inside a transaction so concurrent creates don't collide.
func (r *LoanRepository) NextApplicationNumber(ctx context.Context) (string, error) {
	var last loanDomain.Loan
	res := r.db.WithContext(ctx).
		Unscoped().
		Order("id DESC").
		Limit(1).
		Find(&last)
	if res.Error != nil {
		return "", res.Error
	}
	n := 1
	if last.ApplicationNumber != "" {
		if _, err := fmt.Sscanf(last.ApplicationNumber, "LV-%06d", &n); err == nil {
			n++
		}
	}
	return fmt.Sprintf("LV-%06d", n), nil
}

func (r *LoanRepository) ListPostableByOfficer(ctx context.Context, officerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("officer_id = ? AND status IN ?", officerID, []loanDomain.Status{
			loanDomain.StatusDisbursed, loanDomain.StatusActive, loanDomain.StatusDefaulted,
		}).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, statuses ...loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan, by string) error {
	l.DeletedBy = by
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(l).Error
}
