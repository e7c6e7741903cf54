package loan

import "errors"

var (
	ErrNotFound          = errors.New("loan not found")
	ErrIllegalTransition = errors.New("illegal loan state transition")
	ErrRoleDenied        = errors.New("caller role not permitted")
	ErrInvalidTerms      = errors.New("principal or term outside product bounds")
	ErrResourceBusy      = errors.New("loan is locked by another operation")
	// ErrInvariantViolated marks a programming error discovered post-hoc;
	// the enclosing transaction must abort.
	ErrInvariantViolated = errors.New("ledger invariant violated")
)
