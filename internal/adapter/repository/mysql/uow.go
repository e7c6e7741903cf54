package mysql

import (
	"context"
	"errors"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	loanDomain "palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/domain/uow"
)

// mysql error numbers for lock wait timeout and statement timeout
const (
	errLockWaitTimeout  = 1205
	errStatementTimeout = 3024
)

// UnitOfWork runs callbacks inside a gorm transaction with every
// repository bound to that transaction.
type UnitOfWork struct{ db *gorm.DB }

func NewUnitOfWork(db *gorm.DB) *UnitOfWork { return &UnitOfWork{db: db} }

func bind(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:       NewLoanRepository(tx),
		Products:    NewProductRepository(tx),
		Schedules:   NewScheduleRepository(tx),
		Payments:    NewPaymentRepository(tx),
		Deposits:    NewDepositRepository(tx),
		Collections: NewCollectionRepository(tx),
		Approvals:   NewApprovalRepository(tx),
	}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

// WithinLoanTx locks the loan row before handing control to fn, so two
// callers mutating the same loan run one after the other.
func (u *UnitOfWork) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loanDomain.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := bind(tx)
		l, err := repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return mapLoanErr(err)
		}
		return fn(repos, l)
	})
}

func mapLoanErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loanDomain.ErrNotFound
	}
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errLockWaitTimeout, errStatementTimeout:
			return loanDomain.ErrResourceBusy
		}
	}
	return err
}
