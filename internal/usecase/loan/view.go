package loan

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/pkg/money"
)

// View builds the loan_view projection. It reads without the loan lock;
// snapshot isolation keeps half-applied postings invisible.
func (u *Usecase) View(ctx context.Context, loanID string) (*ViewDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}

	rows, err := u.schedules.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	asof := dateOnly(u.clock.Now())
	totalPaid := money.Zero
	for _, r := range rows {
		totalPaid = totalPaid.Add(r.PaidAmount)
	}

	return &ViewDTO{
		LoanID:           l.LoanID,
		Status:           string(l.Status),
		Principal:        l.Principal,
		Schedule:         rows,
		Arrears:          domainPayment.Arrears(rows, asof),
		NextDue:          domainPayment.NextDue(rows),
		TotalPaid:        totalPaid,
		TotalOutstanding: domainPayment.Outstanding(rows),
		MaturityDate:     l.MaturityDate,
	}, nil
}
