package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domainApproval "palmcash-backend/internal/domain/approval"
	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/pkg/id"
	"palmcash-backend/pkg/money"

	"github.com/shopspring/decimal"
)

// newPayment appends one completed payment row. posted_at is assigned here,
// inside the loan transaction, so postings to one loan carry a consistent
// order.
func (u *Usecase) newPayment(ctx context.Context, r uow.Repos, l *domainLoan.Loan,
	kind domainPayment.TargetKind, installment *int, collected *time.Time,
	in PostInput, postedAt time.Time) (*domainPayment.Payment, error) {

	number, err := r.Payments.NextPaymentNumber(ctx)
	if err != nil {
		return nil, err
	}
	p := &domainPayment.Payment{
		PaymentID:         id.NewID32(),
		PaymentNumber:     number,
		LoanID:            l.ID,
		TargetKind:        kind,
		InstallmentNumber: installment,
		CollectionDate:    collected,
		Amount:            in.Amount,
		Method:            in.Method,
		Status:            domainPayment.StatusCompleted,
		PostedBy:          in.Actor.ID,
		PostedAt:          postedAt,
		Notes:             in.Notes,
	}
	if err := r.Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// transition mirrors the loan usecase's rule: check the lifecycle table,
// stamp, save, append one approval record.
func (u *Usecase) transition(ctx context.Context, r uow.Repos, l *domainLoan.Loan,
	next domainLoan.Status, actor domainLoan.Actor, action domainApproval.Action, notes string) error {

	if !l.Status.CanTransitionTo(next) {
		return domainLoan.ErrIllegalTransition
	}
	l.Status = next
	l.StatusUpdatedAt = u.clock.Now()
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}
	return r.Approvals.Create(ctx, &domainApproval.Record{
		RecordID:  id.NewID32(),
		LoanID:    l.ID,
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Branch:    actor.BranchID,
		Action:    action,
		Notes:     notes,
	})
}

// touchCollection rolls the posting into the officer's sheet row for the
// day, creating the row when the sheet hasn't materialized it yet.
func (u *Usecase) touchCollection(ctx context.Context, r uow.Repos, l *domainLoan.Loan,
	date time.Time, amount decimal.Decimal) error {

	c, err := r.Collections.GetByLoanAndDate(ctx, l.ID, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		due, err := r.Schedules.ListDueOn(ctx, l.ID, date)
		if err != nil {
			return err
		}
		expected := money.Zero
		for _, row := range due {
			expected = expected.Add(row.TotalAmount)
		}
		c = &domainPayment.Collection{
			LoanID:          l.ID,
			OfficerID:       l.OfficerID,
			CollectionDate:  date,
			ExpectedAmount:  expected,
			CollectedAmount: money.Zero,
			Status:          domainPayment.CollectionScheduled,
		}
		if err := r.Collections.Create(ctx, c); err != nil {
			return err
		}
	}
	if c.Status == domainPayment.CollectionCancelled {
		return nil
	}
	c.CollectedAmount = c.CollectedAmount.Add(amount)
	if c.CollectedAmount.GreaterThanOrEqual(c.ExpectedAmount) && money.IsPositive(c.ExpectedAmount) {
		c.Status = domainPayment.CollectionCompleted
	} else {
		c.Status = domainPayment.CollectionInProgress
	}
	return r.Collections.Save(ctx, c)
}

// untouchCollection rolls a reversed posting back out of the day sheet row
// it was counted into, so the sheet keeps agreeing with the payment ledger.
func (u *Usecase) untouchCollection(ctx context.Context, r uow.Repos, l *domainLoan.Loan,
	p *domainPayment.Payment) error {

	if p.CollectionDate == nil {
		return nil
	}
	c, err := r.Collections.GetByLoanAndDate(ctx, l.ID, *p.CollectionDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if c.Status == domainPayment.CollectionCancelled {
		return nil
	}
	c.CollectedAmount = c.CollectedAmount.Sub(p.Amount)
	if c.CollectedAmount.IsNegative() {
		c.CollectedAmount = money.Zero
	}
	if c.Status == domainPayment.CollectionCompleted && c.CollectedAmount.LessThan(c.ExpectedAmount) {
		c.Status = domainPayment.CollectionInProgress
	}
	return r.Collections.Save(ctx, c)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
