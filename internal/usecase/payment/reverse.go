package payment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domainApproval "palmcash-backend/internal/domain/approval"
	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/internal/notify"
	"palmcash-backend/pkg/id"
)

// Reverse marks a completed payment reversed and undoes its allocation.
// Payments stay append-only: the row flips status, nothing else about it
// changes, and a reversal approval record is appended. A formerly
// completed loan with unpaid installments after the reversal returns to
// active.
func (u *Usecase) Reverse(ctx context.Context, paymentID string, actor domainLoan.Actor) error {
	if !actor.CanVerify() {
		return domainLoan.ErrRoleDenied
	}

	// Resolve the owning loan first; the lock is keyed by loan, not payment.
	p, err := u.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainPayment.ErrNotFound
		}
		return err
	}
	owner, err := u.loans.GetByID(ctx, p.LoanID)
	if err != nil {
		return err
	}

	err = u.uow.WithinLoanTx(ctx, owner.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		// re-read under the lock; a concurrent reversal may have won
		p, err := r.Payments.GetByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != domainPayment.StatusCompleted {
			return domainPayment.ErrInvalidPayment
		}

		switch p.TargetKind {
		case domainPayment.TargetInstallment:
			if err := u.unapplyInstallment(ctx, r, l, p); err != nil {
				return err
			}
			if err := u.untouchCollection(ctx, r, l, p); err != nil {
				return err
			}
		case domainPayment.TargetUpfront:
			l.UpfrontPaid = l.UpfrontPaid.Sub(p.Amount)
			if l.UpfrontPaid.IsNegative() {
				return fmt.Errorf("%w: upfront ledger below zero on reversal", domainLoan.ErrInvariantViolated)
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
		case domainPayment.TargetSecurityDeposit:
			d, err := r.Deposits.GetByLoanID(ctx, l.ID)
			if err != nil {
				return err
			}
			d.PaidAmount = d.PaidAmount.Sub(p.Amount)
			if d.PaidAmount.IsNegative() {
				return fmt.Errorf("%w: deposit ledger below zero on reversal", domainLoan.ErrInvariantViolated)
			}
			if err := r.Deposits.Save(ctx, d); err != nil {
				return err
			}
		case domainPayment.TargetOverpayment:
			// no schedule allocation, but the posting was rolled into the
			// day sheet
			if err := u.untouchCollection(ctx, r, l, p); err != nil {
				return err
			}
		}

		p.Status = domainPayment.StatusReversed
		if err := r.Payments.Save(ctx, p); err != nil {
			return err
		}
		return r.Approvals.Create(ctx, &domainApproval.Record{
			RecordID:  id.NewID32(),
			LoanID:    l.ID,
			ActorID:   actor.ID,
			ActorRole: string(actor.Role),
			Branch:    actor.BranchID,
			Action:    domainApproval.ActionReversal,
			Notes:     "payment " + p.PaymentNumber + " reversed",
		})
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "payment.reversed", LoanID: owner.LoanID,
		Payload: map[string]any{"payment_id": paymentID}})
	return nil
}

func (u *Usecase) unapplyInstallment(ctx context.Context, r uow.Repos, l *domainLoan.Loan, p *domainPayment.Payment) error {
	if p.InstallmentNumber == nil {
		return fmt.Errorf("%w: installment payment without installment number", domainLoan.ErrInvariantViolated)
	}
	rows, err := r.Schedules.ListByLoanID(ctx, l.ID)
	if err != nil {
		return err
	}
	var target *domainPayment.Schedule
	for i := range rows {
		if rows[i].InstallmentNumber == *p.InstallmentNumber {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: installment %d missing from schedule", domainLoan.ErrInvariantViolated, *p.InstallmentNumber)
	}

	target.PaidAmount = target.PaidAmount.Sub(p.Amount)
	if target.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: installment %d allocation below zero", domainLoan.ErrInvariantViolated, target.InstallmentNumber)
	}
	if target.PaidAmount.LessThan(target.TotalAmount) {
		target.IsPaid = false
		target.PaidDate = nil
	}
	if err := r.Schedules.Save(ctx, target); err != nil {
		return err
	}

	// completed is otherwise terminal; a reversal is the one path back
	if l.Status == domainLoan.StatusCompleted && !target.IsPaid {
		l.Status = domainLoan.StatusActive
		l.StatusUpdatedAt = u.clock.Now()
		return r.Loans.Save(ctx, l)
	}
	return nil
}
