package loan

import "testing"

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusRejected, StatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	open := []Status{
		StatusDraft, StatusPending, StatusApproved, StatusAwaitingDeposit,
		StatusReadyToDisburse, StatusDisbursed, StatusActive, StatusDefaulted,
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusAwaitingDeposit, true},
		{StatusAwaitingDeposit, StatusReadyToDisburse, true},
		{StatusReadyToDisburse, StatusDisbursed, true},
		{StatusDisbursed, StatusActive, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusDefaulted, true},
		{StatusDefaulted, StatusActive, true},
		{StatusDefaulted, StatusCompleted, true},

		// skipping steps is never allowed
		{StatusDraft, StatusApproved, false},
		{StatusPending, StatusDisbursed, false},
		{StatusApproved, StatusReadyToDisburse, false},
		{StatusApproved, StatusDisbursed, false},
		{StatusDisbursed, StatusCompleted, false},

		// no way back except defaulted -> active
		{StatusApproved, StatusPending, false},
		{StatusActive, StatusDisbursed, false},
		{StatusRejected, StatusPending, false},

		// terminal states stay terminal
		{StatusCompleted, StatusActive, false},
		{StatusCancelled, StatusPending, false},
		{StatusRejected, StatusApproved, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanTransitionTo_Cancel(t *testing.T) {
	for _, s := range []Status{
		StatusDraft, StatusPending, StatusApproved, StatusAwaitingDeposit,
		StatusReadyToDisburse, StatusDisbursed, StatusActive, StatusDefaulted,
	} {
		if !s.CanTransitionTo(StatusCancelled) {
			t.Errorf("%s should allow cancel", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		if s.CanTransitionTo(StatusCancelled) {
			t.Errorf("%s should not allow cancel", s)
		}
	}
}

func TestActorRoles(t *testing.T) {
	if !(Actor{Role: RoleAdmin}).Staff() || !(Actor{Role: RoleManager}).Staff() || !(Actor{Role: RoleLoanOfficer}).Staff() {
		t.Error("admin, manager and loan_officer are staff")
	}
	if (Actor{Role: RoleBorrower}).Staff() {
		t.Error("borrower is not staff")
	}
	if !(Actor{Role: RoleAdmin}).CanVerify() || !(Actor{Role: RoleManager}).CanVerify() {
		t.Error("admin and manager can verify")
	}
	if (Actor{Role: RoleLoanOfficer}).CanVerify() || (Actor{Role: RoleBorrower}).CanVerify() {
		t.Error("officers and borrowers cannot verify")
	}
}

func TestAcceptsInstallments(t *testing.T) {
	for _, s := range []Status{StatusDisbursed, StatusActive, StatusDefaulted} {
		l := Loan{Status: s}
		if !l.AcceptsInstallments() {
			t.Errorf("%s should accept installments", s)
		}
	}
	for _, s := range []Status{StatusDraft, StatusPending, StatusApproved, StatusAwaitingDeposit, StatusReadyToDisburse, StatusCompleted, StatusRejected, StatusCancelled} {
		l := Loan{Status: s}
		if l.AcceptsInstallments() {
			t.Errorf("%s should not accept installments", s)
		}
	}
}
