package payment

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Arrears views are pure functions over schedule rows and a clock; they
// never mutate anything. A scheduler decides what to do with the answers.

// Overdue returns rows unpaid and due strictly before asof, in installment
// order.
func Overdue(rows []Schedule, asof time.Time) []Schedule {
	out := make([]Schedule, 0)
	for _, r := range rows {
		if r.OverdueAsOf(asof) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstallmentNumber < out[j].InstallmentNumber
	})
	return out
}

// Arrears is the sum of remaining due across overdue installments; partial
// allocations already count against their rows.
func Arrears(rows []Schedule, asof time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, r := range Overdue(rows, asof) {
		total = total.Add(r.Remaining())
	}
	return total
}

// NextDue returns the first unpaid row by installment number, nil when the
// schedule is fully paid.
func NextDue(rows []Schedule) *Schedule {
	var next *Schedule
	for i := range rows {
		r := &rows[i]
		if r.IsPaid {
			continue
		}
		if next == nil || r.InstallmentNumber < next.InstallmentNumber {
			next = r
		}
	}
	return next
}

// InDefault reports whether the overdue count has reached the policy
// threshold.
func InDefault(rows []Schedule, asof time.Time, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	return len(Overdue(rows, asof)) >= threshold
}

// Outstanding is the total remaining due across all unpaid rows.
func Outstanding(rows []Schedule) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if !r.IsPaid {
			total = total.Add(r.Remaining())
		}
	}
	return total
}

// AllPaid reports whether every installment row has been cleared.
func AllPaid(rows []Schedule) bool {
	for _, r := range rows {
		if !r.IsPaid {
			return false
		}
	}
	return len(rows) > 0
}
