package mysql

import (
	"context"

	"gorm.io/gorm"

	approvalDomain "palmcash-backend/internal/domain/approval"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, rec *approvalDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ApprovalRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]approvalDomain.Record, error) {
	var out []approvalDomain.Record
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
