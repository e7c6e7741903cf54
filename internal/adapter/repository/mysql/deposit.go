package mysql

import (
	"context"

	"gorm.io/gorm"

	paymentDomain "palmcash-backend/internal/domain/payment"
)

type DepositRepository struct{ db *gorm.DB }

func NewDepositRepository(db *gorm.DB) *DepositRepository { return &DepositRepository{db: db} }

func (r *DepositRepository) Create(ctx context.Context, d *paymentDomain.SecurityDeposit) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepositRepository) Save(ctx context.Context, d *paymentDomain.SecurityDeposit) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DepositRepository) GetByLoanID(ctx context.Context, loanID uint64) (*paymentDomain.SecurityDeposit, error) {
	var out paymentDomain.SecurityDeposit
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}
