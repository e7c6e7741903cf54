package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row until the surrounding
	// transaction commits.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// NextApplicationNumber issues the next LV-%06d application number.
	NextApplicationNumber(ctx context.Context) (string, error)
	// ListPostableByOfficer returns disbursed/active/defaulted loans
	// managed by the officer.
	ListPostableByOfficer(ctx context.Context, officerID string) ([]Loan, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]Loan, error)
	// Delete removes a draft loan (soft delete, cascade handled by caller).
	Delete(ctx context.Context, l *Loan, by string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByProductID(ctx context.Context, productID string) (*Product, error)
	GetByID(ctx context.Context, id uint64) (*Product, error)
	ListActive(ctx context.Context) ([]Product, error)
}
