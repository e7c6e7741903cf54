package uow

import (
	"context"

	"palmcash-backend/internal/domain/approval"
	"palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/domain/payment"
)

// Repos is the bundle of repositories bound to one transaction.
type Repos struct {
	Loans       loan.Repository
	Products    loan.ProductRepository
	Schedules   payment.ScheduleRepository
	Payments    payment.Repository
	Deposits    payment.DepositRepository
	Collections payment.CollectionRepository
	Approvals   approval.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in; every mutation
	// that touches a loan goes through this so concurrent callers serialize.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
