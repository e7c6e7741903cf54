package mysql

import (
	"context"

	"gorm.io/gorm"

	loanDomain "palmcash-backend/internal/domain/loan"
)

// GroupRepository answers the officer approval policy's group count.
type GroupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) *GroupRepository { return &GroupRepository{db: db} }

func (r *GroupRepository) ActiveGroupCount(ctx context.Context, officerID string) (int, error) {
	var count int64
	res := r.db.WithContext(ctx).
		Model(&loanDomain.BorrowerGroup{}).
		Where("officer_id = ? AND is_active = ?", officerID, true).
		Count(&count)
	return int(count), res.Error
}
