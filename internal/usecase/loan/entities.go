package loan

import (
	"time"

	"github.com/shopspring/decimal"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
)

type CreateInput struct {
	BorrowerID string
	OfficerID  string
	ProductID  string // public product id (32-char hex)
	Principal  decimal.Decimal
	TermCount  int
	Purpose    string
}

type LoanDTO struct {
	LoanID            string          `json:"loan_id"`
	ApplicationNumber string          `json:"application_number"`
	BorrowerID        string          `json:"borrower_id"`
	OfficerID         string          `json:"officer_id"`
	Principal         decimal.Decimal `json:"principal"`
	InterestRatePct   decimal.Decimal `json:"interest_rate_pct"`
	Frequency         string          `json:"repayment_frequency"`
	TermCount         int             `json:"term_count"`
	ScheduledPayment  decimal.Decimal `json:"scheduled_payment"`
	Status            string          `json:"status"`
	UpfrontRequired   decimal.Decimal `json:"upfront_required"`
	UpfrontPaid       decimal.Decimal `json:"upfront_paid"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:            l.LoanID,
		ApplicationNumber: l.ApplicationNumber,
		BorrowerID:        l.BorrowerID,
		OfficerID:         l.OfficerID,
		Principal:         l.Principal,
		InterestRatePct:   l.InterestRatePct,
		Frequency:         string(l.RepaymentFrequency),
		TermCount:         l.TermCount,
		ScheduledPayment:  l.ScheduledPayment,
		Status:            string(l.Status),
		UpfrontRequired:   l.UpfrontRequired,
		UpfrontPaid:       l.UpfrontPaid,
		CreatedAt:         l.CreatedAt,
	}
}

// ViewDTO is the loan_view projection: status plus the derived repayment
// picture.
type ViewDTO struct {
	LoanID           string                   `json:"loan_id"`
	Status           string                   `json:"status"`
	Principal        decimal.Decimal          `json:"principal"`
	Schedule         []domainPayment.Schedule `json:"schedule"`
	Arrears          decimal.Decimal          `json:"arrears"`
	NextDue          *domainPayment.Schedule  `json:"next_due,omitempty"`
	TotalPaid        decimal.Decimal          `json:"total_paid"`
	TotalOutstanding decimal.Decimal          `json:"total_outstanding"`
	MaturityDate     *time.Time               `json:"maturity_date,omitempty"`
}
