package domain

import "github.com/shopspring/decimal"

// TierSummary reports one creditor tier of the waterfall: how much was
// requested by all claims in the tier, how much was actually paid out of
// the pool, and how much remains unpaid.
type TierSummary struct {
	Requested decimal.Decimal `json:"requested"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// EquitySummary reports the residual tier. There is no "requested" concept:
// whatever pool is left is split by ownership share by construction.
type EquitySummary struct {
	Pool        decimal.Decimal `json:"pool"`
	Distributed bool            `json:"distributed"`
}

// ParticipantSummary is the per-participant view of a settlement: what they
// put in, what they get back per tier, and the resulting net balance.
// A positive balance means the participant is owed a further transfer;
// negative means they must pay in.
type ParticipantSummary struct {
	ParticipantID  string          `json:"participant_id"`
	Name           string          `json:"name"`
	OwnershipShare decimal.Decimal `json:"ownership_share"`

	ExpensesPaid  decimal.Decimal `json:"expenses_paid"`
	LoansProvided decimal.Decimal `json:"loans_provided"`
	LaborValue    decimal.Decimal `json:"labor_value"`

	ReimbursedExpenses decimal.Decimal `json:"reimbursed_expenses"`
	ReimbursedLoans    decimal.Decimal `json:"reimbursed_loans"`
	LaborPayout        decimal.Decimal `json:"labor_payout"`
	EquityPayout       decimal.Decimal `json:"equity_payout"`

	TotalPayout decimal.Decimal `json:"total_payout"`
	Balance     decimal.Decimal `json:"balance"`
}

// ExternalCreditor is a non-participant lender (bank, company) and how much
// of its loan the sale proceeds could actually cover.
type ExternalCreditor struct {
	Label      string          `json:"label"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// SettlementResult is the full outcome of running the waterfall over one
// project's financial snapshot.
type SettlementResult struct {
	ProjectID   string          `json:"project_id"`
	NetProceeds decimal.Decimal `json:"net_proceeds"`

	// Tier 1: private loans and participant-paid expenses.
	PrivateClaims TierSummary `json:"private_claims"`
	// Tier 2: loans from non-participants.
	ExternalLoans TierSummary `json:"external_loans"`
	// Tier 3: billable labor.
	Labor TierSummary `json:"labor"`
	// Tier 4: residual profit by ownership share.
	Equity EquitySummary `json:"equity"`

	Participants      []ParticipantSummary `json:"participants"`
	ExternalCreditors []ExternalCreditor   `json:"external_creditors"`

	// OwnershipShareTotal is the sum of all participants' shares. The
	// engine computes with the raw shares either way; callers should warn
	// when this deviates from 100.
	OwnershipShareTotal decimal.Decimal `json:"ownership_share_total"`

	// UnresolvedRefs lists participant ids referenced by expenses, loans or
	// labor entries that matched no participant. Such records are treated
	// as external/unattributed rather than rejected.
	UnresolvedRefs []string `json:"unresolved_refs,omitempty"`
}
