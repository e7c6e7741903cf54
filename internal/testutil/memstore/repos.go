package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"palmcash-backend/internal/domain/approval"
	"palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/domain/payment"
)

// The repo adapters never take the store mutex themselves; the unit of
// work holds it for the duration of a callback.

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *loan.Loan) error {
	if l.ID == 0 {
		l.ID = r.s.id()
	}
	l.CreatedAt = time.Now().UTC()
	r.s.loans[l.ID] = l
	r.s.loanByID[l.LoanID] = l.ID
	return nil
}

func (r *loanRepo) Save(_ context.Context, l *loan.Loan) error {
	r.s.loans[l.ID] = l
	r.s.loanByID[l.LoanID] = l.ID
	return nil
}

func (r *loanRepo) GetByLoanID(_ context.Context, loanID string) (*loan.Loan, error) {
	id, ok := r.s.loanByID[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r.s.loans[id]
	return &cp, nil
}

func (r *loanRepo) GetByLoanIDForUpdate(_ context.Context, loanID string) (*loan.Loan, error) {
	id, ok := r.s.loanByID[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.loans[id], nil
}

func (r *loanRepo) GetByID(_ context.Context, id uint64) (*loan.Loan, error) {
	l, ok := r.s.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *loanRepo) NextApplicationNumber(_ context.Context) (string, error) {
	return fmt.Sprintf("LV-%06d", len(r.s.loans)+1), nil
}

func (r *loanRepo) ListPostableByOfficer(_ context.Context, officerID string) ([]loan.Loan, error) {
	out := make([]loan.Loan, 0)
	for _, l := range r.s.loans {
		if l.OfficerID == officerID && l.AcceptsInstallments() {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *loanRepo) ListByStatus(_ context.Context, statuses ...loan.Status) ([]loan.Loan, error) {
	out := make([]loan.Loan, 0)
	for _, l := range r.s.loans {
		for _, st := range statuses {
			if l.Status == st {
				out = append(out, *l)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *loanRepo) Delete(_ context.Context, l *loan.Loan, by string) error {
	l.DeletedBy = by
	delete(r.s.loans, l.ID)
	delete(r.s.loanByID, l.LoanID)
	return nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *loan.Product) error {
	if p.ID == 0 {
		p.ID = r.s.id()
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *productRepo) GetByProductID(_ context.Context, productID string) (*loan.Product, error) {
	for _, p := range r.s.products {
		if p.ProductID == productID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *productRepo) GetByID(_ context.Context, id uint64) (*loan.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) ListActive(_ context.Context) ([]loan.Product, error) {
	out := make([]loan.Product, 0)
	for _, p := range r.s.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type scheduleRepo struct{ s *Store }

func (r *scheduleRepo) BulkCreate(_ context.Context, rows []payment.Schedule) error {
	for i := range rows {
		cp := rows[i]
		if cp.ID == 0 {
			cp.ID = r.s.id()
		}
		r.s.schedules[cp.LoanID] = append(r.s.schedules[cp.LoanID], &cp)
	}
	return nil
}

func (r *scheduleRepo) Save(_ context.Context, row *payment.Schedule) error {
	for i, cur := range r.s.schedules[row.LoanID] {
		if cur.ID == row.ID || cur.InstallmentNumber == row.InstallmentNumber {
			cp := *row
			r.s.schedules[row.LoanID][i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *scheduleRepo) ListByLoanID(_ context.Context, loanID uint64) ([]payment.Schedule, error) {
	rows := r.s.schedules[loanID]
	out := make([]payment.Schedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (r *scheduleRepo) ListDueOn(_ context.Context, loanID uint64, date time.Time) ([]payment.Schedule, error) {
	out := make([]payment.Schedule, 0)
	for _, row := range r.s.schedules[loanID] {
		if sameDate(row.DueDate, date) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *payment.Payment) error {
	if p.ID == 0 {
		p.ID = r.s.id()
	}
	r.s.payments[p.ID] = p
	return nil
}

func (r *paymentRepo) Save(_ context.Context, p *payment.Payment) error {
	r.s.payments[p.ID] = p
	return nil
}

func (r *paymentRepo) GetByPaymentID(_ context.Context, paymentID string) (*payment.Payment, error) {
	for _, p := range r.s.payments {
		if p.PaymentID == paymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *paymentRepo) ListByLoanID(_ context.Context, loanID uint64) ([]payment.Payment, error) {
	out := make([]payment.Payment, 0)
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *paymentRepo) SumCompletedByTarget(_ context.Context, loanID uint64, kind payment.TargetKind) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.LoanID == loanID && p.TargetKind == kind && p.Status == payment.StatusCompleted {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *paymentRepo) SumCompletedOnDate(_ context.Context, loanID uint64, date time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.payments {
		if p.LoanID == loanID && p.Status == payment.StatusCompleted && sameDate(p.PostedAt, date) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *paymentRepo) NextPaymentNumber(_ context.Context) (string, error) {
	return fmt.Sprintf("PAY-%06d", len(r.s.payments)+1), nil
}

type depositRepo struct{ s *Store }

func (r *depositRepo) Create(_ context.Context, d *payment.SecurityDeposit) error {
	if d.ID == 0 {
		d.ID = r.s.id()
	}
	r.s.deposits[d.LoanID] = d
	return nil
}

func (r *depositRepo) Save(_ context.Context, d *payment.SecurityDeposit) error {
	r.s.deposits[d.LoanID] = d
	return nil
}

func (r *depositRepo) GetByLoanID(_ context.Context, loanID uint64) (*payment.SecurityDeposit, error) {
	d, ok := r.s.deposits[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

type collectionRepo struct{ s *Store }

func (r *collectionRepo) Create(_ context.Context, c *payment.Collection) error {
	if c.ID == 0 {
		c.ID = r.s.id()
	}
	r.s.collections[c.ID] = c
	return nil
}

func (r *collectionRepo) Save(_ context.Context, c *payment.Collection) error {
	r.s.collections[c.ID] = c
	return nil
}

func (r *collectionRepo) GetByLoanAndDate(_ context.Context, loanID uint64, date time.Time) (*payment.Collection, error) {
	for _, c := range r.s.collections {
		if c.LoanID == loanID && sameDate(c.CollectionDate, date) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *collectionRepo) ListByOfficerAndDate(_ context.Context, officerID string, date time.Time) ([]payment.Collection, error) {
	out := make([]payment.Collection, 0)
	for _, c := range r.s.collections {
		if c.OfficerID == officerID && sameDate(c.CollectionDate, date) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoanID < out[j].LoanID })
	return out, nil
}

type approvalRepo struct{ s *Store }

func (r *approvalRepo) Create(_ context.Context, rec *approval.Record) error {
	if rec.ID == 0 {
		rec.ID = r.s.id()
	}
	rec.CreatedAt = time.Now().UTC()
	r.s.approvals = append(r.s.approvals, rec)
	return nil
}

func (r *approvalRepo) ListByLoanID(_ context.Context, loanID uint64) ([]approval.Record, error) {
	out := make([]approval.Record, 0)
	for _, rec := range r.s.approvals {
		if rec.LoanID == loanID {
			out = append(out, *rec)
		}
	}
	return out, nil
}
