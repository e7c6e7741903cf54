package payment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainApproval "palmcash-backend/internal/domain/approval"
	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/internal/notify"
	"palmcash-backend/pkg/clock"
	"palmcash-backend/pkg/money"
)

// Usecase is the payment poster: it applies cash inflows to a loan inside
// the per-loan lock, so two concurrent posters always observe a total
// order and no installment is double-credited.
type Usecase struct {
	loans    domainLoan.Repository
	payments domainPayment.Repository
	uow      uow.UnitOfWork
	cfg      domainLoan.Policy
	clock    clock.Clock
	sink     notify.Sink
}

type Deps struct {
	Loans    domainLoan.Repository
	Payments domainPayment.Repository
	UoW      uow.UnitOfWork
	Config   domainLoan.Policy
	Clock    clock.Clock
	Sink     notify.Sink
}

func NewUsecase(d Deps) *Usecase {
	return &Usecase{
		loans:    d.Loans,
		payments: d.Payments,
		uow:      d.UoW,
		cfg:      d.Config,
		clock:    d.Clock,
		sink:     d.Sink,
	}
}

// PostUpfront records an upfront fee payment while the loan sits in
// approved. The loan's upfront_paid mirror stays equal to the sum of
// completed upfront postings.
func (u *Usecase) PostUpfront(ctx context.Context, in PostInput) (*ReceiptDTO, error) {
	if !money.IsPositive(in.Amount) || !in.Method.Valid() {
		return nil, domainPayment.ErrInvalidPayment
	}
	var dto *ReceiptDTO
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusApproved {
			return domainPayment.ErrInvalidPayment
		}
		newPaid := l.UpfrontPaid.Add(in.Amount)
		if newPaid.GreaterThan(l.UpfrontRequired.Add(u.cfg.OverpaymentTolerance)) {
			return domainPayment.ErrOverpaymentRejected
		}

		postedAt := u.clock.Now()
		p, err := u.newPayment(ctx, r, l, domainPayment.TargetUpfront, nil, nil, in, postedAt)
		if err != nil {
			return err
		}
		l.UpfrontPaid = newPaid
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = &ReceiptDTO{
			PaymentIDs: []string{p.PaymentID},
			LoanID:     l.LoanID,
			Amount:     in.Amount,
			LoanStatus: string(l.Status),
			PostedAt:   postedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// PostSecurityDeposit records a deposit payment while the loan awaits its
// deposit. The deposit ledger is separate from the upfront fee.
func (u *Usecase) PostSecurityDeposit(ctx context.Context, in PostInput) (*ReceiptDTO, error) {
	if !money.IsPositive(in.Amount) || !in.Method.Valid() {
		return nil, domainPayment.ErrInvalidPayment
	}
	var dto *ReceiptDTO
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusAwaitingDeposit {
			return domainPayment.ErrInvalidPayment
		}
		d, err := r.Deposits.GetByLoanID(ctx, l.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainPayment.ErrInvalidPayment
			}
			return err
		}
		newPaid := d.PaidAmount.Add(in.Amount)
		if newPaid.GreaterThan(d.RequiredAmount.Add(u.cfg.OverpaymentTolerance)) {
			return domainPayment.ErrOverpaymentRejected
		}

		postedAt := u.clock.Now()
		p, err := u.newPayment(ctx, r, l, domainPayment.TargetSecurityDeposit, nil, nil, in, postedAt)
		if err != nil {
			return err
		}
		d.PaidAmount = newPaid
		d.PaymentDate = &postedAt
		d.Method = in.Method
		if err := r.Deposits.Save(ctx, d); err != nil {
			return err
		}
		dto = &ReceiptDTO{
			PaymentIDs: []string{p.PaymentID},
			LoanID:     l.LoanID,
			Amount:     in.Amount,
			LoanStatus: string(l.Status),
			PostedAt:   postedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// PostInstallment walks the schedule in installment order, clearing rows
// in full and leaving at most one partial. Whatever survives the walk
// becomes a loan-level overpayment row. Payment rows, schedule rows and
// any loan status change commit together or not at all.
func (u *Usecase) PostInstallment(ctx context.Context, in PostInstallmentInput) (*ReceiptDTO, error) {
	if !money.IsPositive(in.Amount) || !in.Method.Valid() {
		return nil, domainPayment.ErrInvalidPayment
	}
	var dto *ReceiptDTO
	var completed bool
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !l.AcceptsInstallments() {
			return domainPayment.ErrInvalidPayment
		}
		rows, err := r.Schedules.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		outstanding := domainPayment.Outstanding(rows)
		if !in.AllowOverpayment &&
			in.Amount.GreaterThan(outstanding.Add(u.cfg.OverpaymentTolerance)) {
			return domainPayment.ErrOverpaymentRejected
		}

		postedAt := u.clock.Now()
		collDate := dateOnly(in.CollectionDate)
		if in.CollectionDate.IsZero() {
			collDate = dateOnly(postedAt)
		} else if collDate.After(dateOnly(postedAt)) {
			// backdated field collections are fine, a paid date may never
			// postdate the posting
			return domainPayment.ErrInvalidPayment
		}

		dto = &ReceiptDTO{
			LoanID:      l.LoanID,
			Amount:      in.Amount,
			Overpayment: money.Zero,
			PostedAt:    postedAt,
		}

		remaining := in.Amount
		postIn := PostInput{LoanID: in.LoanID, Method: in.Method, Actor: in.Actor, Notes: in.Notes}
		for i := range rows {
			if !money.IsPositive(remaining) {
				break
			}
			row := &rows[i]
			if row.IsPaid {
				continue
			}
			alloc := money.Min(remaining, row.Remaining())
			postIn.Amount = alloc
			n := row.InstallmentNumber
			p, err := u.newPayment(ctx, r, l, domainPayment.TargetInstallment, &n, &collDate, postIn, postedAt)
			if err != nil {
				return err
			}
			dto.PaymentIDs = append(dto.PaymentIDs, p.PaymentID)

			row.PaidAmount = row.PaidAmount.Add(alloc)
			if row.PaidAmount.GreaterThanOrEqual(row.TotalAmount) {
				row.IsPaid = true
				paidOn := collDate
				row.PaidDate = &paidOn
				dto.InstallmentsPaid = append(dto.InstallmentsPaid, n)
			} else {
				partial := n
				dto.PartialOn = &partial
			}
			if err := r.Schedules.Save(ctx, row); err != nil {
				return err
			}
			remaining = remaining.Sub(alloc)
		}

		if money.IsPositive(remaining) {
			postIn.Amount = remaining
			p, err := u.newPayment(ctx, r, l, domainPayment.TargetOverpayment, nil, &collDate, postIn, postedAt)
			if err != nil {
				return err
			}
			dto.PaymentIDs = append(dto.PaymentIDs, p.PaymentID)
			dto.Overpayment = remaining
		}

		if err := u.settleStatus(ctx, r, l, rows, in.Actor); err != nil {
			return err
		}
		if err := u.touchCollection(ctx, r, l, collDate, in.Amount); err != nil {
			return err
		}

		completed = l.Status == domainLoan.StatusCompleted
		dto.LoanStatus = string(l.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if completed {
		u.sink.Notify(ctx, notify.Event{Kind: "loan.completed", LoanID: in.LoanID})
	}
	return dto, nil
}

// settleStatus applies the posting-driven transitions: first posting
// activates a disbursed loan, a cleared schedule completes it, cleared
// arrears restore a defaulted one.
func (u *Usecase) settleStatus(ctx context.Context, r uow.Repos, l *domainLoan.Loan,
	rows []domainPayment.Schedule, actor domainLoan.Actor) error {

	today := dateOnly(u.clock.Now())

	if l.Status == domainLoan.StatusDisbursed {
		if err := u.transition(ctx, r, l, domainLoan.StatusActive, actor, domainApproval.ActionActivate, ""); err != nil {
			return err
		}
	}
	if domainPayment.AllPaid(rows) {
		return u.transition(ctx, r, l, domainLoan.StatusCompleted, actor, domainApproval.ActionComplete, "")
	}
	if l.Status == domainLoan.StatusDefaulted &&
		!domainPayment.InDefault(rows, today, u.cfg.DefaultThreshold) {
		return u.transition(ctx, r, l, domainLoan.StatusActive, actor, domainApproval.ActionRestore, "")
	}
	return nil
}
