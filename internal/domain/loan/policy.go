package loan

import "github.com/shopspring/decimal"

// Policy bundles the tunable business parameters. It is built once at
// startup from config and injected; nothing in the core mutates it.
type Policy struct {
	// Officers may approve only when managing at least this many active groups.
	OfficerApprovalMinGroups int
	// Consecutive overdue installments before a loan is considered in default.
	DefaultThreshold int
	// Small positive slack by which a posting may exceed the outstanding
	// balance without being rejected (absorbs rounding).
	OverpaymentTolerance decimal.Decimal
	// Upfront fee as a percent of principal.
	UpfrontPercent decimal.Decimal
	// Security deposit as a percent of principal.
	DepositPercent decimal.Decimal
}
