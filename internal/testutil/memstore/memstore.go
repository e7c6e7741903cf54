// Package memstore is an in-memory stand-in for the mysql repositories and
// unit of work, used by usecase tests. It keeps everything in maps guarded
// by one mutex, which doubles as the per-loan lock.
package memstore

import (
	"context"
	"sync"
	"time"

	"palmcash-backend/internal/domain/approval"
	"palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
)

type Store struct {
	mu sync.Mutex

	nextID uint64

	loans    map[uint64]*loan.Loan
	loanByID map[string]uint64
	products map[uint64]*loan.Product

	schedules   map[uint64][]*payment.Schedule // by loan numeric id
	payments    map[uint64]*payment.Payment
	deposits    map[uint64]*payment.SecurityDeposit // by loan numeric id
	collections map[uint64]*payment.Collection
	approvals   []*approval.Record

	// groupCounts has its own lock so ActiveGroupCount can be called from
	// inside WithinTx/WithinLoanTx (which hold mu) without self-deadlocking.
	gmu         sync.Mutex
	groupCounts map[string]int
}

func New() *Store {
	return &Store{
		loans:       make(map[uint64]*loan.Loan),
		loanByID:    make(map[string]uint64),
		products:    make(map[uint64]*loan.Product),
		schedules:   make(map[uint64][]*payment.Schedule),
		payments:    make(map[uint64]*payment.Payment),
		deposits:    make(map[uint64]*payment.SecurityDeposit),
		collections: make(map[uint64]*payment.Collection),
		groupCounts: make(map[string]int),
	}
}

func (s *Store) id() uint64 { s.nextID++; return s.nextID }

// Repos returns the repository bundle backed by this store.
func (s *Store) Repos() uow.Repos {
	return uow.Repos{
		Loans:       &loanRepo{s},
		Products:    &productRepo{s},
		Schedules:   &scheduleRepo{s},
		Payments:    &paymentRepo{s},
		Deposits:    &depositRepo{s},
		Collections: &collectionRepo{s},
		Approvals:   &approvalRepo{s},
	}
}

// ---- unit of work ----

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Repos())
}

func (s *Store) WithinLoanTx(_ context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.loanByID[loanID]
	if !ok {
		return loan.ErrNotFound
	}
	return fn(s.Repos(), s.loans[id])
}

// ---- seeding and inspection helpers ----

// SeedProduct inserts a product and returns it.
func (s *Store) SeedProduct(p *loan.Product) *loan.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products[p.ID] = p
	return p
}

// SeedLoan inserts a loan directly, bypassing the usecases.
func (s *Store) SeedLoan(l *loan.Loan) *loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.loans[l.ID] = l
	s.loanByID[l.LoanID] = l.ID
	return l
}

// SeedSchedule appends installment rows for a loan.
func (s *Store) SeedSchedule(loanID uint64, rows []payment.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rows {
		r := rows[i]
		if r.ID == 0 {
			r.ID = s.id()
		}
		r.LoanID = loanID
		s.schedules[loanID] = append(s.schedules[loanID], &r)
	}
}

// SeedDeposit sets the security deposit row for a loan.
func (s *Store) SeedDeposit(d *payment.SecurityDeposit) *payment.SecurityDeposit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.id()
	}
	s.deposits[d.LoanID] = d
	return d
}

// SetGroupCount fixes the active group count reported for an officer.
func (s *Store) SetGroupCount(officerID string, n int) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.groupCounts[officerID] = n
}

// ActiveGroupCount implements loan.GroupCounter.
func (s *Store) ActiveGroupCount(_ context.Context, officerID string) (int, error) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	return s.groupCounts[officerID], nil
}

// Approvals returns a copy of the audit trail.
func (s *Store) Approvals() []approval.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]approval.Record, 0, len(s.approvals))
	for _, r := range s.approvals {
		out = append(out, *r)
	}
	return out
}

// Payments returns every stored payment row.
func (s *Store) Payments() []payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]payment.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, *p)
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var _ uow.UnitOfWork = (*Store)(nil)
var _ loan.GroupCounter = (*Store)(nil)
