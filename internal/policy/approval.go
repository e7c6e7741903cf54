package policy

import (
	"context"

	"palmcash-backend/internal/domain/loan"
)

// ApprovalPolicy implements the role gate for the approve transition:
// admins and managers always may; loan officers only while managing enough
// active borrower groups.
type ApprovalPolicy struct {
	groups    loan.GroupCounter
	minGroups int
}

func NewApprovalPolicy(groups loan.GroupCounter, minGroups int) *ApprovalPolicy {
	return &ApprovalPolicy{groups: groups, minGroups: minGroups}
}

func (p *ApprovalPolicy) MayApprove(ctx context.Context, actor loan.Actor) (bool, error) {
	switch actor.Role {
	case loan.RoleAdmin, loan.RoleManager:
		return true, nil
	case loan.RoleLoanOfficer:
		n, err := p.groups.ActiveGroupCount(ctx, actor.ID)
		if err != nil {
			return false, err
		}
		return n >= p.minGroups, nil
	default:
		return false, nil
	}
}
