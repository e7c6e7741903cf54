package loan

import (
	"time"

	"gorm.io/gorm"
)

// BorrowerGroup is a field group of borrowers assigned to one loan
// officer. Officer approval rights hinge on how many active groups the
// officer runs.
type BorrowerGroup struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	GroupID   string         `gorm:"column:group_id;type:varchar(32);uniqueIndex;not null"`
	Name      string         `gorm:"column:name;type:varchar(128);not null"`
	OfficerID string         `gorm:"column:officer_id;type:varchar(64);index;not null"`
	BranchID  string         `gorm:"column:branch_id;type:varchar(64);index"`
	IsActive  bool           `gorm:"column:is_active;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (BorrowerGroup) TableName() string { return "borrower_groups" }
