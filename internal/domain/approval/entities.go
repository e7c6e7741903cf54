package approval

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("approval record not found")

type Action string

const (
	ActionSubmit        Action = "submit"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionVerifyUpfront Action = "verify_upfront"
	ActionVerifyDeposit Action = "verify_deposit"
	ActionDisburse      Action = "disburse"
	ActionCancel        Action = "cancel"
	ActionActivate      Action = "activate"
	ActionDefault       Action = "default"
	ActionRestore       Action = "restore"
	ActionComplete      Action = "complete"
	ActionReversal      Action = "reversal"
)

// Record is one line of the append-only audit trail. Every lifecycle
// transition writes exactly one.
type Record struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	RecordID  string    `gorm:"column:record_id;type:char(32);not null;uniqueIndex:ux_approvals_record_id" json:"record_id"`
	LoanID    uint64    `gorm:"column:loan_id;not null;index:idx_approvals_loan" json:"-"`
	ActorID   string    `gorm:"column:actor_id;type:char(32);not null" json:"actor_id"`
	ActorRole string    `gorm:"column:actor_role;size:20;not null" json:"actor_role"`
	Branch    string    `gorm:"column:branch;size:100" json:"branch,omitempty"`
	Action    Action    `gorm:"column:action;size:20;not null" json:"action"`
	Notes     string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "approval_records" }
