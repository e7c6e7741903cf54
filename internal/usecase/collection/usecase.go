package collection

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/pkg/clock"
	"palmcash-backend/pkg/money"
)

// Transitioner is the slice of the loan lifecycle the sweep needs; the
// loan usecase satisfies it.
type Transitioner interface {
	MarkDefaulted(ctx context.Context, loanID string, actor domainLoan.Actor) error
	RestoreFromDefault(ctx context.Context, loanID string, actor domainLoan.Actor) error
}

// SystemActor stamps transitions made by the scheduler rather than a
// person.
var SystemActor = domainLoan.Actor{ID: "system", Role: domainLoan.RoleAdmin}

// Usecase derives per-officer collection views and runs the arrears sweep.
// The views read without the loan lock.
type Usecase struct {
	loans       domainLoan.Repository
	schedules   domainPayment.ScheduleRepository
	payments    domainPayment.Repository
	collections domainPayment.CollectionRepository
	uow         uow.UnitOfWork
	lifecycle   Transitioner
	cfg         domainLoan.Policy
	clock       clock.Clock
}

type Deps struct {
	Loans       domainLoan.Repository
	Schedules   domainPayment.ScheduleRepository
	Payments    domainPayment.Repository
	Collections domainPayment.CollectionRepository
	UoW         uow.UnitOfWork
	Lifecycle   Transitioner
	Config      domainLoan.Policy
	Clock       clock.Clock
}

func NewUsecase(d Deps) *Usecase {
	return &Usecase{
		loans:       d.Loans,
		schedules:   d.Schedules,
		payments:    d.Payments,
		collections: d.Collections,
		uow:         d.UoW,
		lifecycle:   d.Lifecycle,
		cfg:         d.Config,
		clock:       d.Clock,
	}
}

// SheetRow is one line of an officer's daily sheet.
type SheetRow struct {
	LoanID            string          `json:"loan_id"`
	ApplicationNumber string          `json:"application_number"`
	BorrowerID        string          `json:"borrower_id"`
	LoanStatus        string          `json:"loan_status"`
	ExpectedToday     decimal.Decimal `json:"expected_today"`
	CollectedToday    decimal.Decimal `json:"collected_today"`
	Arrears           decimal.Decimal `json:"arrears"`
}

// OfficerSheet lists, per postable loan of the officer, what is due on the
// given date and what has come in so far.
func (u *Usecase) OfficerSheet(ctx context.Context, officerID string, date time.Time) ([]SheetRow, error) {
	date = dateOnly(date)
	loans, err := u.loans.ListPostableByOfficer(ctx, officerID)
	if err != nil {
		return nil, err
	}

	sheet := make([]SheetRow, 0, len(loans))
	for i := range loans {
		l := &loans[i]
		due, err := u.schedules.ListDueOn(ctx, l.ID, date)
		if err != nil {
			return nil, err
		}
		expected := money.Zero
		for _, row := range due {
			expected = expected.Add(row.TotalAmount)
		}
		collected, err := u.payments.SumCompletedOnDate(ctx, l.ID, date)
		if err != nil {
			return nil, err
		}
		all, err := u.schedules.ListByLoanID(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		sheet = append(sheet, SheetRow{
			LoanID:            l.LoanID,
			ApplicationNumber: l.ApplicationNumber,
			BorrowerID:        l.BorrowerID,
			LoanStatus:        string(l.Status),
			ExpectedToday:     expected,
			CollectedToday:    collected,
			Arrears:           domainPayment.Arrears(all, date),
		})
	}
	return sheet, nil
}

// ScheduleCollections materializes the officer's sheet rows for a date so
// the field sweep has something to tick off. Existing rows are left alone.
func (u *Usecase) ScheduleCollections(ctx context.Context, officerID string, date time.Time) (int, error) {
	date = dateOnly(date)
	loans, err := u.loans.ListPostableByOfficer(ctx, officerID)
	if err != nil {
		return 0, err
	}

	created := 0
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		for i := range loans {
			l := &loans[i]
			if _, err := r.Collections.GetByLoanAndDate(ctx, l.ID, date); err == nil {
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			due, err := r.Schedules.ListDueOn(ctx, l.ID, date)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				continue
			}
			expected := money.Zero
			for _, row := range due {
				expected = expected.Add(row.TotalAmount)
			}
			if err := r.Collections.Create(ctx, &domainPayment.Collection{
				LoanID:          l.ID,
				OfficerID:       officerID,
				CollectionDate:  date,
				ExpectedAmount:  expected,
				CollectedAmount: money.Zero,
				Status:          domainPayment.CollectionScheduled,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// SweepDefaults walks active and defaulted loans and reconciles their
// status against the overdue count. Returns how many loans changed.
func (u *Usecase) SweepDefaults(ctx context.Context) (int, error) {
	loans, err := u.loans.ListByStatus(ctx, domainLoan.StatusActive, domainLoan.StatusDefaulted)
	if err != nil {
		return 0, err
	}
	asof := dateOnly(u.clock.Now())

	changed := 0
	for i := range loans {
		l := &loans[i]
		rows, err := u.schedules.ListByLoanID(ctx, l.ID)
		if err != nil {
			return changed, err
		}
		inDefault := domainPayment.InDefault(rows, asof, u.cfg.DefaultThreshold)
		switch {
		case l.Status == domainLoan.StatusActive && inDefault:
			if err := u.lifecycle.MarkDefaulted(ctx, l.LoanID, SystemActor); err != nil {
				return changed, err
			}
			changed++
		case l.Status == domainLoan.StatusDefaulted && !inDefault:
			if err := u.lifecycle.RestoreFromDefault(ctx, l.LoanID, SystemActor); err != nil {
				return changed, err
			}
			changed++
		}
	}
	return changed, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
