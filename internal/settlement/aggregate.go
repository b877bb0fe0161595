package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/flipcrew/flipsettle/internal/domain"
)

type claimKind string

const (
	claimLoan     claimKind = "loan"
	claimExpense  claimKind = "expense"
	claimLabor    claimKind = "labor"
	claimExternal claimKind = "external"
)

// claim is one weighted entry in a waterfall tier. owner indexes into the
// snapshot's accounts; it is -1 for external claims, which carry a creditor
// label instead.
type claim struct {
	kind   claimKind
	owner  int
	label  string
	amount decimal.Decimal
}

// account accumulates one participant's contributions and payouts across
// the tiers. Built once during aggregation; the tier stages only add to
// the payout fields.
type account struct {
	participant domain.Participant

	expensesPaid  decimal.Decimal
	loansProvided decimal.Decimal
	laborValue    decimal.Decimal

	reimbursedExpenses decimal.Decimal
	reimbursedLoans    decimal.Decimal
	laborPayout        decimal.Decimal
	equityPayout       decimal.Decimal
}

// snapshot is the aggregated view of a project's financial facts: the pool
// to distribute and the claim lists for the three creditor tiers.
type snapshot struct {
	netProceeds decimal.Decimal
	accounts    []account

	tier1 []claim
	tier2 []claim
	tier3 []claim

	// External creditors in first-seen order, with total principal owed
	// per label.
	creditorOrder []string
	creditorOwed  map[string]decimal.Decimal

	unresolved []string
}

// aggregate collapses the raw records into per-participant totals and the
// tier claim lists. It never rejects input: records referencing unknown
// participant ids are demoted to external/unattributed and reported via
// the unresolved list.
func aggregate(in Input) *snapshot {
	snap := &snapshot{
		accounts:     make([]account, len(in.Participants)),
		creditorOwed: make(map[string]decimal.Decimal),
	}

	index := make(map[string]int, len(in.Participants))
	for i, p := range in.Participants {
		snap.accounts[i] = account{participant: p}
		index[p.ID] = i
	}

	snap.netProceeds = netProceeds(in.Sale, in.Expenses)

	// Expenses: participant-paid amounts become reimbursable; externally
	// paid amounts (including unresolvable payer ids) generate no claim.
	for _, e := range in.Expenses {
		if e.PaidByParticipantID == "" {
			continue
		}
		i, ok := index[e.PaidByParticipantID]
		if !ok {
			snap.unresolved = append(snap.unresolved, e.PaidByParticipantID)
			continue
		}
		snap.accounts[i].expensesPaid = snap.accounts[i].expensesPaid.Add(e.Amount)
	}

	// Loans. Private loans are tier-1 claims, one per loan. A private loan
	// whose lender id no longer resolves is treated as an external loan
	// labeled with the stale id. Other loans are tier-2 claims keyed by
	// lender label.
	for _, l := range in.Loans {
		switch l.Type {
		case domain.LoanPrivate:
			if i, ok := index[l.LenderParticipantID]; ok {
				snap.accounts[i].loansProvided = snap.accounts[i].loansProvided.Add(l.Principal)
				snap.tier1 = append(snap.tier1, claim{kind: claimLoan, owner: i, amount: l.Principal})
				continue
			}
			snap.unresolved = append(snap.unresolved, l.LenderParticipantID)
			snap.addExternalClaim(l.LenderParticipantID, l.Principal)
		default:
			snap.addExternalClaim(l.LenderLabel, l.Principal)
		}
	}

	// One aggregated tier-1 expense claim per participant, separate from
	// any loan claims so reimbursement can be reported by kind.
	for i := range snap.accounts {
		if snap.accounts[i].expensesPaid.IsPositive() {
			snap.tier1 = append(snap.tier1, claim{
				kind:   claimExpense,
				owner:  i,
				amount: snap.accounts[i].expensesPaid,
			})
		}
	}

	// Labor: billable entries only, and only when the project pays labor
	// out at all.
	if in.Project.LaborPayoutEnabled {
		for _, le := range in.Labor {
			if !le.IsBillable {
				continue
			}
			i, ok := index[le.ParticipantID]
			if !ok {
				snap.unresolved = append(snap.unresolved, le.ParticipantID)
				continue
			}
			value := le.Hours.Mul(le.HourlyRate)
			snap.accounts[i].laborValue = snap.accounts[i].laborValue.Add(value)
		}
		for i := range snap.accounts {
			if snap.accounts[i].laborValue.IsPositive() {
				snap.tier3 = append(snap.tier3, claim{
					kind:   claimLabor,
					owner:  i,
					amount: snap.accounts[i].laborValue,
				})
			}
		}
	}

	return snap
}

func (s *snapshot) addExternalClaim(label string, amount decimal.Decimal) {
	if label == "" {
		label = "external"
	}
	if _, seen := s.creditorOwed[label]; !seen {
		s.creditorOrder = append(s.creditorOrder, label)
	}
	s.creditorOwed[label] = s.creditorOwed[label].Add(amount)
	s.tier2 = append(s.tier2, claim{kind: claimExternal, owner: -1, label: label, amount: amount})
}

// netProceeds is gross sale price minus sale costs. When the sale record
// carries no explicit costs, costs fall back to the sum of expenses tagged
// as sale costs. No sale means nothing to distribute.
func netProceeds(sale *domain.Sale, expenses []domain.Expense) decimal.Decimal {
	if sale == nil {
		return decimal.Zero
	}
	costs := sale.SaleCosts
	if costs.IsZero() {
		for _, e := range expenses {
			if e.IsSaleCost {
				costs = costs.Add(e.Amount)
			}
		}
	}
	return sale.GrossSalePrice.Sub(costs)
}
