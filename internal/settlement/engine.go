// Package settlement divides the net proceeds of a flip project among its
// participants. Creditors are repaid in a strict waterfall before any
// profit is shared: private loans and out-of-pocket expenses first, then
// external loans, then billable labor, and finally the residual by
// ownership share. The engine is a pure function over an in-memory
// snapshot: it performs no I/O, never mutates its inputs, and is safe to
// call concurrently.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// Input is the immutable snapshot of one project's financial facts. Sale
// may be nil (property not sold yet), in which case there is nothing to
// distribute.
type Input struct {
	Project      domain.Project
	Participants []domain.Participant
	Expenses     []domain.Expense
	Loans        []domain.Loan
	Labor        []domain.LaborEntry
	Sale         *domain.Sale
}

var hundred = decimal.NewFromInt(100)

// Compute runs the full waterfall and returns the settlement. It is
// deterministic and degrades gracefully on odd input: missing sale, empty
// tiers, ownership shares not summing to 100 and unresolvable participant
// ids all produce a result, never an error.
func Compute(in Input) domain.SettlementResult {
	snap := aggregate(in)
	pool := snap.netProceeds

	// Tiers 1-3: same allocator, different claim sets.
	tier1Payouts, tier1, pool := allocate(pool, snap.tier1)
	for i, c := range snap.tier1 {
		acct := &snap.accounts[c.owner]
		switch c.kind {
		case claimLoan:
			acct.reimbursedLoans = acct.reimbursedLoans.Add(tier1Payouts[i])
		case claimExpense:
			acct.reimbursedExpenses = acct.reimbursedExpenses.Add(tier1Payouts[i])
		}
	}

	tier2Payouts, tier2, pool := allocate(pool, snap.tier2)
	creditorPaid := make(map[string]decimal.Decimal, len(snap.creditorOrder))
	for i, c := range snap.tier2 {
		creditorPaid[c.label] = creditorPaid[c.label].Add(tier2Payouts[i])
	}

	tier3Payouts, tier3, pool := allocate(pool, snap.tier3)
	for i, c := range snap.tier3 {
		snap.accounts[c.owner].laborPayout = snap.accounts[c.owner].laborPayout.Add(tier3Payouts[i])
	}

	// Tier 4: the residual is split by ownership share. Always fully
	// funded by construction; a depleted pool just means zero payouts.
	equity := domain.EquitySummary{Pool: pool, Distributed: true}
	if pool.IsPositive() {
		for i := range snap.accounts {
			acct := &snap.accounts[i]
			acct.equityPayout = pool.Mul(acct.participant.OwnershipShare).Div(hundred)
		}
	}

	return reconcile(in.Project, snap, tier1, tier2, tier3, equity, creditorPaid)
}

// reconcile nets every participant's payouts against their contributions
// and assembles the final result. When external loans could not be fully
// repaid and the project's ownership terms allow it, the shortfall is
// charged back to owners by ownership share. That adjustment models a
// legal obligation, not a cash transfer: it reduces balances exactly once,
// after all tiers, and never touches the tier payouts themselves.
func reconcile(
	project domain.Project,
	snap *snapshot,
	tier1, tier2, tier3 domain.TierSummary,
	equity domain.EquitySummary,
	creditorPaid map[string]decimal.Decimal,
) domain.SettlementResult {
	backcharge := project.OwnershipAllowsDeficitBackcharge && tier2.Remaining.IsPositive()

	summaries := make([]domain.ParticipantSummary, len(snap.accounts))
	shareTotal := decimal.Zero
	for i := range snap.accounts {
		acct := &snap.accounts[i]
		share := acct.participant.OwnershipShare
		shareTotal = shareTotal.Add(share)

		totalPayout := acct.reimbursedExpenses.
			Add(acct.reimbursedLoans).
			Add(acct.laborPayout).
			Add(acct.equityPayout)
		balance := totalPayout.Sub(acct.expensesPaid).Sub(acct.loansProvided)
		if backcharge {
			balance = balance.Sub(tier2.Remaining.Mul(share).Div(hundred))
		}

		summaries[i] = domain.ParticipantSummary{
			ParticipantID:      acct.participant.ID,
			Name:               acct.participant.Name,
			OwnershipShare:     share,
			ExpensesPaid:       acct.expensesPaid,
			LoansProvided:      acct.loansProvided,
			LaborValue:         acct.laborValue,
			ReimbursedExpenses: acct.reimbursedExpenses,
			ReimbursedLoans:    acct.reimbursedLoans,
			LaborPayout:        acct.laborPayout,
			EquityPayout:       acct.equityPayout,
			TotalPayout:        totalPayout,
			Balance:            balance,
		}
	}

	creditors := make([]domain.ExternalCreditor, 0, len(snap.creditorOrder))
	for _, label := range snap.creditorOrder {
		creditors = append(creditors, domain.ExternalCreditor{
			Label:      label,
			AmountOwed: snap.creditorOwed[label],
			AmountPaid: creditorPaid[label],
		})
	}

	return domain.SettlementResult{
		ProjectID:           project.ID,
		NetProceeds:         snap.netProceeds,
		PrivateClaims:       tier1,
		ExternalLoans:       tier2,
		Labor:               tier3,
		Equity:              equity,
		Participants:        summaries,
		ExternalCreditors:   creditors,
		OwnershipShareTotal: shareTotal,
		UnresolvedRefs:      snap.unresolved,
	}
}
