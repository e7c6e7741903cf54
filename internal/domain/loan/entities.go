package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"palmcash-backend/pkg/amortize"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusAwaitingDeposit Status = "awaiting_deposit"
	StatusReadyToDisburse Status = "ready_to_disburse"
	StatusDisbursed       Status = "disbursed"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusDefaulted       Status = "defaulted"
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// transitions is the single source of truth for the lifecycle. Cancel is
// handled separately: any non-terminal state may move to cancelled.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusPending},
	StatusPending:         {StatusApproved, StatusRejected},
	StatusApproved:        {StatusAwaitingDeposit},
	StatusAwaitingDeposit: {StatusReadyToDisburse},
	StatusReadyToDisburse: {StatusDisbursed},
	StatusDisbursed:       {StatusActive},
	StatusActive:          {StatusCompleted, StatusDefaulted},
	StatusDefaulted:       {StatusActive, StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	if next == StatusCancelled {
		return !s.Terminal()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Product is the catalogue entry a loan is originated from. Rate and terms
// are snapshotted onto the loan at creation, so later product edits never
// touch live loans.
type Product struct {
	ID                 uint64             `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProductID          string             `gorm:"column:product_id;type:char(32);not null;uniqueIndex:ux_products_product_id" json:"product_id"`
	Name               string             `gorm:"column:name;size:100;not null" json:"name"`
	Description        string             `gorm:"column:description;type:text" json:"description"`
	RepaymentFrequency amortize.Frequency `gorm:"column:repayment_frequency;type:enum('daily','weekly');default:'weekly'" json:"repayment_frequency"`
	InterestRatePct    decimal.Decimal    `gorm:"column:interest_rate_pct;type:decimal(5,2)" json:"interest_rate_pct"`
	MinAmount          decimal.Decimal    `gorm:"column:min_amount;type:decimal(12,2)" json:"min_amount"`
	MaxAmount          decimal.Decimal    `gorm:"column:max_amount;type:decimal(12,2)" json:"max_amount"`
	MinTerm            int                `gorm:"column:min_term" json:"min_term"` // days for daily, weeks for weekly
	MaxTerm            int                `gorm:"column:max_term" json:"max_term"`
	IsActive           bool               `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Product) TableName() string { return "loan_products" }

// TermInRange checks a requested term against the product bounds.
func (p *Product) TermInRange(term int) bool {
	return term >= p.MinTerm && term <= p.MaxTerm
}

// AmountInRange checks a requested principal against the product bounds.
func (p *Product) AmountInRange(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

type Loan struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	LoanID string `gorm:"column:loan_id;type:char(32);not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	// Human-facing application number, LV-000001 style
	ApplicationNumber string `gorm:"column:application_number;size:20;uniqueIndex:ux_loans_application_number" json:"application_number"`
	BorrowerID        string `gorm:"column:borrower_id;type:char(32);not null;index:idx_loans_borrower" json:"borrower_id"`
	OfficerID         string `gorm:"column:officer_id;type:char(32);index:idx_loans_officer" json:"officer_id"`
	ProductID         uint64 `gorm:"column:product_id;not null;index" json:"-"`

	Principal          decimal.Decimal    `gorm:"column:principal;type:decimal(12,2)" json:"principal"`
	InterestRatePct    decimal.Decimal    `gorm:"column:interest_rate_pct;type:decimal(5,2)" json:"interest_rate_pct"` // snapshot
	RepaymentFrequency amortize.Frequency `gorm:"column:repayment_frequency;type:enum('daily','weekly')" json:"repayment_frequency"`
	TermCount          int                `gorm:"column:term_count" json:"term_count"` // days or weeks per frequency
	// Set exactly once at approved -> awaiting_deposit, immutable afterwards.
	ScheduledPayment decimal.Decimal `gorm:"column:scheduled_payment;type:decimal(10,2)" json:"scheduled_payment"`

	Status          Status     `gorm:"column:status;type:enum('draft','pending','approved','awaiting_deposit','ready_to_disburse','disbursed','active','completed','defaulted','rejected','cancelled');default:'draft'" json:"status"`
	StatusUpdatedAt time.Time  `gorm:"column:status_updated_at" json:"status_updated_at"`
	Purpose         string     `gorm:"column:purpose;type:text" json:"purpose"`
	ApprovalDate    *time.Time `gorm:"column:approval_date" json:"approval_date,omitempty"`
	DisbursedAt     *time.Time `gorm:"column:disbursed_at" json:"disbursed_at,omitempty"`
	MaturityDate    *time.Time `gorm:"column:maturity_date;type:date" json:"maturity_date,omitempty"`

	// Upfront fee ledger, distinct from the security deposit.
	UpfrontRequired decimal.Decimal `gorm:"column:upfront_required;type:decimal(12,2)" json:"upfront_required"`
	UpfrontPaid     decimal.Decimal `gorm:"column:upfront_paid;type:decimal(12,2)" json:"upfront_paid"`
	UpfrontVerified bool            `gorm:"column:upfront_verified;default:false" json:"upfront_verified"`

	DepositRequired bool `gorm:"column:deposit_required;default:true" json:"deposit_required"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
	DeletedBy string         `gorm:"column:deleted_by;type:char(32)" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// AcceptsInstallments reports whether the loan may receive installment postings.
func (l *Loan) AcceptsInstallments() bool {
	switch l.Status {
	case StatusDisbursed, StatusActive, StatusDefaulted:
		return true
	}
	return false
}
