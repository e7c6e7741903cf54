package amortize

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"palmcash-backend/pkg/money"
)

// Flat-interest, equal-installment amortization. Same inputs always produce
// the same schedule; the engine never reads a clock or a store.

var ErrInvalidTerms = errors.New("invalid amortization terms")

type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

func (f Frequency) Valid() bool { return f == Daily || f == Weekly }

// PeriodsPerYear: daily loans annualize over 365 days, weekly over 52 weeks.
func (f Frequency) PeriodsPerYear() int64 {
	if f == Daily {
		return 365
	}
	return 52
}

// stepDays is the calendar gap between successive installments.
func (f Frequency) stepDays() int {
	if f == Daily {
		return 1
	}
	return 7
}

// DueDateAdjuster optionally shifts a raw due date (holiday policy and the
// like). The engine applies it after stepping; identity when nil.
type DueDateAdjuster func(time.Time) time.Time

type Terms struct {
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal // percent figure, e.g. 45.00
	Frequency     Frequency
	TermCount     int
	DisbursedOn   time.Time // date; first installment falls one step after
	AdjustDueDate DueDateAdjuster
}

type Installment struct {
	Number    int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
}

// TotalInterest is principal x rate x term_years rounded to cents.
func TotalInterest(t Terms) decimal.Decimal {
	years := decimal.NewFromInt(int64(t.TermCount)).
		Div(decimal.NewFromInt(t.Frequency.PeriodsPerYear()))
	return money.Round2(t.Principal.Mul(money.Percent(t.AnnualRatePct)).Mul(years))
}

// BaseInstallment is the per-period payment before last-row remainder
// adjustment. This is the figure snapshotted onto the loan.
func BaseInstallment(t Terms) (decimal.Decimal, error) {
	if err := validate(t); err != nil {
		return decimal.Zero, err
	}
	total := t.Principal.Add(TotalInterest(t))
	return money.Round2(total.Div(decimal.NewFromInt(int64(t.TermCount)))), nil
}

// Schedule produces the full installment sequence. Sum of principal
// components equals the principal exactly and sum of totals equals
// principal + TotalInterest; the final row absorbs cent-level remainders.
func Schedule(t Terms) ([]Installment, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	n := int64(t.TermCount)
	interest := TotalInterest(t)
	base, _ := BaseInstallment(t)
	principalPer := money.Round2(t.Principal.Div(decimal.NewFromInt(n)))
	interestPer := base.Sub(principalPer)

	start := dateOnly(t.DisbursedOn)
	rows := make([]Installment, 0, t.TermCount)

	var sumP, sumI decimal.Decimal
	for i := 1; i <= t.TermCount; i++ {
		due := start.AddDate(0, 0, t.Frequency.stepDays()*i)
		if t.AdjustDueDate != nil {
			due = t.AdjustDueDate(due)
		}

		p, in := principalPer, interestPer
		if i == t.TermCount {
			// last row takes whatever the rounded splits left over
			p = t.Principal.Sub(sumP)
			in = interest.Sub(sumI)
		}
		rows = append(rows, Installment{
			Number:    i,
			DueDate:   due,
			Principal: p,
			Interest:  in,
			Total:     p.Add(in),
		})
		sumP = sumP.Add(p)
		sumI = sumI.Add(in)
	}
	return rows, nil
}

func validate(t Terms) error {
	if !t.Frequency.Valid() {
		return ErrInvalidTerms
	}
	if t.TermCount <= 0 {
		return ErrInvalidTerms
	}
	if !t.Principal.GreaterThan(decimal.Zero) {
		return ErrInvalidTerms
	}
	if t.AnnualRatePct.IsNegative() {
		return ErrInvalidTerms
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
