package loan

import "context"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleLoanOfficer Role = "loan_officer"
	RoleBorrower    Role = "borrower"
)

// Actor is the caller context handed in by the identity service.
type Actor struct {
	ID       string
	Role     Role
	BranchID string
}

// Staff reports whether the actor holds a back-office role.
func (a Actor) Staff() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager || a.Role == RoleLoanOfficer
}

// CanVerify gates verify_upfront, verify_deposit and disburse.
func (a Actor) CanVerify() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// ApprovalPolicy decides whether an actor may approve loans. The group-count
// rule for officers lives behind this interface so the core never reads
// group tables itself.
type ApprovalPolicy interface {
	MayApprove(ctx context.Context, actor Actor) (bool, error)
}

// GroupCounter is what the officer approval policy needs from the group
// subsystem: how many active borrower groups an officer manages.
type GroupCounter interface {
	ActiveGroupCount(ctx context.Context, officerID string) (int, error)
}
