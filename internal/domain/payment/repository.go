package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	ListByLoanID(ctx context.Context, loanID uint64) ([]Payment, error)
	// SumCompletedByTarget backs the upfront_paid = sum-of-postings invariant.
	SumCompletedByTarget(ctx context.Context, loanID uint64, kind TargetKind) (decimal.Decimal, error)
	// SumCompletedOnDate is the officer sheet's collected-today figure.
	SumCompletedOnDate(ctx context.Context, loanID uint64, date time.Time) (decimal.Decimal, error)
	NextPaymentNumber(ctx context.Context) (string, error)
}

type ScheduleRepository interface {
	BulkCreate(ctx context.Context, rows []Schedule) error
	Save(ctx context.Context, row *Schedule) error
	ListByLoanID(ctx context.Context, loanID uint64) ([]Schedule, error)
	ListDueOn(ctx context.Context, loanID uint64, date time.Time) ([]Schedule, error)
}

type DepositRepository interface {
	Create(ctx context.Context, d *SecurityDeposit) error
	Save(ctx context.Context, d *SecurityDeposit) error
	GetByLoanID(ctx context.Context, loanID uint64) (*SecurityDeposit, error)
}

type CollectionRepository interface {
	Create(ctx context.Context, c *Collection) error
	Save(ctx context.Context, c *Collection) error
	GetByLoanAndDate(ctx context.Context, loanID uint64, date time.Time) (*Collection, error)
	ListByOfficerAndDate(ctx context.Context, officerID string, date time.Time) ([]Collection, error)
}
