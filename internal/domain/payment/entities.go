package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodMobileMoney  Method = "mobile_money"
	MethodCheck        Method = "check"
	MethodCard         Method = "card"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCheck, MethodCard:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusReversed  Status = "reversed"
)

// TargetKind says what a payment row was applied to. Together with
// InstallmentNumber it renders the tagged target variant: Upfront,
// SecurityDeposit, Installment(n) or Overpayment.
type TargetKind string

const (
	TargetUpfront         TargetKind = "upfront"
	TargetSecurityDeposit TargetKind = "security_deposit"
	TargetInstallment     TargetKind = "installment"
	TargetOverpayment     TargetKind = "overpayment"
)

// Schedule is one installment row. PaidAmount accumulates partial
// allocations; IsPaid flips when PaidAmount reaches TotalAmount.
type Schedule struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID            uint64          `gorm:"column:loan_id;not null;index:idx_schedules_loan;uniqueIndex:ux_schedules_loan_installment" json:"-"`
	InstallmentNumber int             `gorm:"column:installment_number;not null;uniqueIndex:ux_schedules_loan_installment" json:"installment_number"`
	DueDate           time.Time       `gorm:"column:due_date;type:date;not null" json:"due_date"`
	PrincipalAmount   decimal.Decimal `gorm:"column:principal_amount;type:decimal(10,2)" json:"principal_amount"`
	InterestAmount    decimal.Decimal `gorm:"column:interest_amount;type:decimal(10,2)" json:"interest_amount"`
	TotalAmount       decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2)" json:"total_amount"`
	PaidAmount        decimal.Decimal `gorm:"column:paid_amount;type:decimal(10,2);default:0" json:"paid_amount"`
	IsPaid            bool            `gorm:"column:is_paid;default:false" json:"is_paid"`
	PaidDate          *time.Time      `gorm:"column:paid_date;type:date" json:"paid_date,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Schedule) TableName() string { return "payment_schedules" }

// Remaining is the unallocated part of the installment.
func (s *Schedule) Remaining() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// OverdueAsOf reports whether the installment is unpaid past its due date.
func (s *Schedule) OverdueAsOf(asof time.Time) bool {
	return !s.IsPaid && s.DueDate.Before(asof)
}

// Payment is an append-only cash movement. Corrections are compensating
// entries (status reversed plus a fresh row), never mutation.
type Payment struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	PaymentID string `gorm:"column:payment_id;type:char(32);not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	// Human-facing receipt number, PAY-000001 style
	PaymentNumber string     `gorm:"column:payment_number;size:20;uniqueIndex:ux_payments_payment_number" json:"payment_number"`
	LoanID        uint64     `gorm:"column:loan_id;not null;index:idx_payments_loan" json:"-"`
	TargetKind    TargetKind `gorm:"column:target_kind;type:enum('upfront','security_deposit','installment','overpayment');not null" json:"target_kind"`
	// Set only when TargetKind == installment.
	InstallmentNumber *int `gorm:"column:installment_number" json:"installment_number,omitempty"`
	// Sheet day the cash was collected on; set by installment postings so a
	// reversal can undo the day's rollup.
	CollectionDate *time.Time      `gorm:"column:collection_date;type:date" json:"collection_date,omitempty"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	Method         Method          `gorm:"column:method;type:enum('cash','bank_transfer','mobile_money','check','card')" json:"method"`
	Status         Status          `gorm:"column:status;type:enum('pending','completed','reversed');default:'pending'" json:"status"`
	PostedBy       string          `gorm:"column:posted_by;type:char(32)" json:"posted_by"`
	PostedAt       time.Time       `gorm:"column:posted_at;not null" json:"posted_at"`
	Notes          string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Payment) TableName() string { return "payments" }

// SecurityDeposit is the refundable collateral ledger, at most one per loan,
// verified separately from the upfront fee.
type SecurityDeposit struct {
	ID               uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID           uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_deposits_loan" json:"-"`
	RequiredAmount   decimal.Decimal `gorm:"column:required_amount;type:decimal(12,2)" json:"required_amount"`
	PaidAmount       decimal.Decimal `gorm:"column:paid_amount;type:decimal(12,2);default:0" json:"paid_amount"`
	PaymentDate      *time.Time      `gorm:"column:payment_date" json:"payment_date,omitempty"`
	Method           Method          `gorm:"column:method;type:enum('cash','bank_transfer','mobile_money','check','card')" json:"method,omitempty"`
	IsVerified       bool            `gorm:"column:is_verified;default:false" json:"is_verified"`
	VerifiedBy       string          `gorm:"column:verified_by;type:char(32)" json:"verified_by,omitempty"`
	VerificationDate *time.Time      `gorm:"column:verification_date" json:"verification_date,omitempty"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (SecurityDeposit) TableName() string { return "security_deposits" }

// Outstanding is the unpaid part of the required deposit, never negative.
func (d *SecurityDeposit) Outstanding() decimal.Decimal {
	out := d.RequiredAmount.Sub(d.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

type CollectionStatus string

const (
	CollectionScheduled  CollectionStatus = "scheduled"
	CollectionInProgress CollectionStatus = "in_progress"
	CollectionCompleted  CollectionStatus = "completed"
	CollectionCancelled  CollectionStatus = "cancelled"
)

// Collection is one row of a field officer's daily sweep sheet.
type Collection struct {
	ID              uint64           `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID          uint64           `gorm:"column:loan_id;not null;uniqueIndex:ux_collections_loan_date" json:"-"`
	OfficerID       string           `gorm:"column:officer_id;type:char(32);index:idx_collections_officer" json:"officer_id"`
	CollectionDate  time.Time        `gorm:"column:collection_date;type:date;not null;uniqueIndex:ux_collections_loan_date" json:"collection_date"`
	ExpectedAmount  decimal.Decimal  `gorm:"column:expected_amount;type:decimal(10,2)" json:"expected_amount"`
	CollectedAmount decimal.Decimal  `gorm:"column:collected_amount;type:decimal(10,2);default:0" json:"collected_amount"`
	Status          CollectionStatus `gorm:"column:status;type:enum('scheduled','in_progress','completed','cancelled');default:'scheduled'" json:"status"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Collection) TableName() string { return "payment_collections" }
