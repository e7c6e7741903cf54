package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	paymentDomain "palmcash-backend/internal/domain/payment"
)

type CollectionRepository struct{ db *gorm.DB }

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(ctx context.Context, c *paymentDomain.Collection) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CollectionRepository) Save(ctx context.Context, c *paymentDomain.Collection) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CollectionRepository) GetByLoanAndDate(ctx context.Context, loanID uint64, date time.Time) (*paymentDomain.Collection, error) {
	var out paymentDomain.Collection
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND collection_date = ?", loanID, date).
		First(&out)
	return &out, res.Error
}

func (r *CollectionRepository) ListByOfficerAndDate(ctx context.Context, officerID string, date time.Time) ([]paymentDomain.Collection, error) {
	var out []paymentDomain.Collection
	res := r.db.WithContext(ctx).
		Where("officer_id = ? AND collection_date = ?", officerID, date).
		Order("loan_id ASC").
		Find(&out)
	return out, res.Error
}
