package approval

import "context"

type Repository interface {
	// Create appends one record; records are never updated or deleted.
	Create(ctx context.Context, r *Record) error
	ListByLoanID(ctx context.Context, loanID uint64) ([]Record, error)
}
