package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	paymentDomain "palmcash-backend/internal/domain/payment"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]paymentDomain.Payment, error) {
	var out []paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("posted_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) SumCompletedByTarget(ctx context.Context, loanID uint64, kind paymentDomain.TargetKind) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	res := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Select("SUM(amount)").
		Where("loan_id = ? AND target_kind = ? AND status = ?", loanID, kind, paymentDomain.StatusCompleted).
		Scan(&sum)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *PaymentRepository) SumCompletedOnDate(ctx context.Context, loanID uint64, date time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)
	res := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Select("SUM(amount)").
		Where("loan_id = ? AND status = ? AND posted_at >= ? AND posted_at < ?",
			loanID, paymentDomain.StatusCompleted, dayStart, dayEnd).
		Scan(&sum)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// NextPaymentNumber issues PAY-%06d receipt numbers off the latest row.
// Callers run it inside the loan transaction.
func (r *PaymentRepository) NextPaymentNumber(ctx context.Context) (string, error) {
	var last paymentDomain.Payment
	res := r.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&last)
	if res.Error != nil {
		return "", res.Error
	}
	n := 1
	if last.PaymentNumber != "" {
		if _, err := fmt.Sscanf(last.PaymentNumber, "PAY-%06d", &n); err == nil {
			n++
		}
	}
	return fmt.Sprintf("PAY-%06d", n), nil
}
