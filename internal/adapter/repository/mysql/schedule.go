package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	paymentDomain "palmcash-backend/internal/domain/payment"
)

type ScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

func (r *ScheduleRepository) BulkCreate(ctx context.Context, rows []paymentDomain.Schedule) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *ScheduleRepository) Save(ctx context.Context, row *paymentDomain.Schedule) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *ScheduleRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]paymentDomain.Schedule, error) {
	var out []paymentDomain.Schedule
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("installment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *ScheduleRepository) ListDueOn(ctx context.Context, loanID uint64, date time.Time) ([]paymentDomain.Schedule, error) {
	var out []paymentDomain.Schedule
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND due_date = ?", loanID, date).
		Order("installment_number ASC").
		Find(&out)
	return out, res.Error
}
