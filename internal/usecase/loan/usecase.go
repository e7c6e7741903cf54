package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainApproval "palmcash-backend/internal/domain/approval"
	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/internal/notify"
	"palmcash-backend/pkg/amortize"
	"palmcash-backend/pkg/clock"
	"palmcash-backend/pkg/id"
	"palmcash-backend/pkg/money"
)

// Usecase drives the loan lifecycle: every transition runs inside a
// per-loan row lock and appends one approval record.
type Usecase struct {
	loans     domainLoan.Repository
	products  domainLoan.ProductRepository
	schedules domainPayment.ScheduleRepository
	uow       uow.UnitOfWork
	policy    domainLoan.ApprovalPolicy
	cfg       domainLoan.Policy
	clock     clock.Clock
	sink      notify.Sink
}

type Deps struct {
	Loans     domainLoan.Repository
	Products  domainLoan.ProductRepository
	Schedules domainPayment.ScheduleRepository
	UoW       uow.UnitOfWork
	Policy    domainLoan.ApprovalPolicy
	Config    domainLoan.Policy
	Clock     clock.Clock
	Sink      notify.Sink
}

func NewUsecase(d Deps) *Usecase {
	return &Usecase{
		loans:     d.Loans,
		products:  d.Products,
		schedules: d.Schedules,
		uow:       d.UoW,
		policy:    d.Policy,
		cfg:       d.Config,
		clock:     d.Clock,
		sink:      d.Sink,
	}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*LoanDTO, error) {
	if !money.IsPositive(in.Principal) {
		return nil, domainLoan.ErrInvalidTerms
	}

	p, err := u.products.GetByProductID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	if !p.IsActive || !p.AmountInRange(in.Principal) || !p.TermInRange(in.TermCount) {
		return nil, domainLoan.ErrInvalidTerms
	}

	var dto *LoanDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		appNo, err := r.Loans.NextApplicationNumber(ctx)
		if err != nil {
			return err
		}
		l := &domainLoan.Loan{
			LoanID:             id.NewID32(),
			ApplicationNumber:  appNo,
			BorrowerID:         in.BorrowerID,
			OfficerID:          in.OfficerID,
			ProductID:          p.ID,
			Principal:          in.Principal,
			InterestRatePct:    p.InterestRatePct, // snapshot: product edits never touch live loans
			RepaymentFrequency: p.RepaymentFrequency,
			TermCount:          in.TermCount,
			Status:             domainLoan.StatusDraft,
			StatusUpdatedAt:    u.clock.Now(),
			Purpose:            in.Purpose,
			UpfrontRequired:    money.Round2(in.Principal.Mul(money.Percent(u.cfg.UpfrontPercent))),
			UpfrontPaid:        money.Zero,
			DepositRequired:    true,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Submit(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		return u.transition(ctx, r, l, domainLoan.StatusPending, actor, domainApproval.ActionSubmit, "")
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "loan.submitted", LoanID: loanID})
	return nil
}

func (u *Usecase) Approve(ctx context.Context, loanID string, actor domainLoan.Actor, notes string) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusPending {
			return domainLoan.ErrIllegalTransition
		}
		ok, err := u.policy.MayApprove(ctx, actor)
		if err != nil {
			return err
		}
		if !ok {
			return domainLoan.ErrRoleDenied
		}
		now := u.clock.Now()
		l.ApprovalDate = &now
		return u.transition(ctx, r, l, domainLoan.StatusApproved, actor, domainApproval.ActionApprove, notes)
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "loan.approved", LoanID: loanID})
	return nil
}

func (u *Usecase) Reject(ctx context.Context, loanID string, actor domainLoan.Actor, reason string) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusPending {
			return domainLoan.ErrIllegalTransition
		}
		ok, err := u.policy.MayApprove(ctx, actor)
		if err != nil {
			return err
		}
		if !ok {
			return domainLoan.ErrRoleDenied
		}
		return u.transition(ctx, r, l, domainLoan.StatusRejected, actor, domainApproval.ActionReject, reason)
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "loan.rejected", LoanID: loanID, Payload: map[string]any{"reason": reason}})
	return nil
}

// VerifyUpfront moves approved -> awaiting_deposit. This is the one place
// the scheduled payment amount gets computed and written; it never changes
// afterwards. The security deposit ledger row is opened here too.
func (u *Usecase) VerifyUpfront(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusApproved {
			return domainLoan.ErrIllegalTransition
		}
		if !actor.CanVerify() {
			return domainLoan.ErrRoleDenied
		}
		if l.UpfrontPaid.LessThan(l.UpfrontRequired) {
			return domainPayment.ErrInvalidPayment
		}

		base, err := amortize.BaseInstallment(amortize.Terms{
			Principal:     l.Principal,
			AnnualRatePct: l.InterestRatePct,
			Frequency:     l.RepaymentFrequency,
			TermCount:     l.TermCount,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domainLoan.ErrInvalidTerms, err)
		}
		l.UpfrontVerified = true
		l.ScheduledPayment = base

		if l.DepositRequired {
			if _, err := r.Deposits.GetByLoanID(ctx, l.ID); err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				d := &domainPayment.SecurityDeposit{
					LoanID:         l.ID,
					RequiredAmount: money.Round2(l.Principal.Mul(money.Percent(u.cfg.DepositPercent))),
					PaidAmount:     money.Zero,
				}
				if err := r.Deposits.Create(ctx, d); err != nil {
					return err
				}
			}
		}
		return u.transition(ctx, r, l, domainLoan.StatusAwaitingDeposit, actor, domainApproval.ActionVerifyUpfront, "")
	})
	return err
}

func (u *Usecase) VerifyDeposit(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusAwaitingDeposit {
			return domainLoan.ErrIllegalTransition
		}
		if !actor.CanVerify() {
			return domainLoan.ErrRoleDenied
		}
		d, err := r.Deposits.GetByLoanID(ctx, l.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainPayment.ErrInvalidPayment
			}
			return err
		}
		if d.PaidAmount.LessThan(d.RequiredAmount) {
			return domainPayment.ErrInvalidPayment
		}
		now := u.clock.Now()
		d.IsVerified = true
		d.VerifiedBy = actor.ID
		d.VerificationDate = &now
		if err := r.Deposits.Save(ctx, d); err != nil {
			return err
		}
		return u.transition(ctx, r, l, domainLoan.StatusReadyToDisburse, actor, domainApproval.ActionVerifyDeposit, "")
	})
	return err
}

// Disburse releases funds and generates the installment schedule, exactly
// once per loan.
func (u *Usecase) Disburse(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusReadyToDisburse {
			return domainLoan.ErrIllegalTransition
		}
		if !actor.CanVerify() {
			return domainLoan.ErrRoleDenied
		}

		now := u.clock.Now()
		rows, err := amortize.Schedule(amortize.Terms{
			Principal:     l.Principal,
			AnnualRatePct: l.InterestRatePct,
			Frequency:     l.RepaymentFrequency,
			TermCount:     l.TermCount,
			DisbursedOn:   now,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domainLoan.ErrInvalidTerms, err)
		}

		sched := make([]domainPayment.Schedule, 0, len(rows))
		sumPrincipal := money.Zero
		for _, row := range rows {
			sched = append(sched, domainPayment.Schedule{
				LoanID:            l.ID,
				InstallmentNumber: row.Number,
				DueDate:           row.DueDate,
				PrincipalAmount:   row.Principal,
				InterestAmount:    row.Interest,
				TotalAmount:       row.Total,
				PaidAmount:        money.Zero,
			})
			sumPrincipal = sumPrincipal.Add(row.Principal)
		}
		if !money.EqualCents(sumPrincipal, l.Principal) {
			return fmt.Errorf("%w: schedule principal %s != loan principal %s",
				domainLoan.ErrInvariantViolated, sumPrincipal, l.Principal)
		}
		if err := r.Schedules.BulkCreate(ctx, sched); err != nil {
			return err
		}

		maturity := rows[len(rows)-1].DueDate
		l.DisbursedAt = &now
		l.MaturityDate = &maturity
		return u.transition(ctx, r, l, domainLoan.StatusDisbursed, actor, domainApproval.ActionDisburse, "")
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "loan.disbursed", LoanID: loanID})
	return nil
}

func (u *Usecase) Cancel(ctx context.Context, loanID string, actor domainLoan.Actor, reason string) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if actor.Role != domainLoan.RoleAdmin {
			return domainLoan.ErrRoleDenied
		}
		return u.transition(ctx, r, l, domainLoan.StatusCancelled, actor, domainApproval.ActionCancel, reason)
	})
}

// Delete removes a draft application; anything past draft is immutable
// history.
func (u *Usecase) Delete(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !actor.Staff() {
			return domainLoan.ErrRoleDenied
		}
		if l.Status != domainLoan.StatusDraft {
			return domainLoan.ErrIllegalTransition
		}
		return r.Loans.Delete(ctx, l, actor.ID)
	})
}

// MarkDefaulted is invoked by the arrears sweep, not by callers.
func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		return u.transition(ctx, r, l, domainLoan.StatusDefaulted, actor, domainApproval.ActionDefault, "")
	})
	if err != nil {
		return err
	}
	u.sink.Notify(ctx, notify.Event{Kind: "loan.defaulted", LoanID: loanID})
	return nil
}

// RestoreFromDefault moves a defaulted loan back to active once arrears
// clear.
func (u *Usecase) RestoreFromDefault(ctx context.Context, loanID string, actor domainLoan.Actor) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusDefaulted {
			return domainLoan.ErrIllegalTransition
		}
		return u.transition(ctx, r, l, domainLoan.StatusActive, actor, domainApproval.ActionRestore, "")
	})
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	return toDTO(l), nil
}

// transition enforces the lifecycle table, stamps the loan and appends the
// audit record. Callers must hold the loan row lock.
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

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
