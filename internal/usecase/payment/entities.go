package payment

import (
	"time"

	"github.com/shopspring/decimal"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
)

type PostInput struct {
	LoanID string
	Amount decimal.Decimal
	Method domainPayment.Method
	Actor  domainLoan.Actor
	Notes  string
}

type PostInstallmentInput struct {
	LoanID         string
	Amount         decimal.Decimal
	CollectionDate time.Time // date the cash changed hands; zero means today
	Method         domainPayment.Method
	Actor          domainLoan.Actor
	// AllowOverpayment lets a posting exceed the total outstanding beyond
	// the configured tolerance; the excess lands as a loan-level
	// overpayment row.
	AllowOverpayment bool
	Notes            string
}

// ReceiptDTO summarizes what one posting did.
type ReceiptDTO struct {
	PaymentIDs       []string        `json:"payment_ids"`
	LoanID           string          `json:"loan_id"`
	Amount           decimal.Decimal `json:"amount"`
	InstallmentsPaid []int           `json:"installments_paid,omitempty"`
	PartialOn        *int            `json:"partial_on,omitempty"`
	Overpayment      decimal.Decimal `json:"overpayment"`
	LoanStatus       string          `json:"loan_status"`
	PostedAt         time.Time       `json:"posted_at"`
}
