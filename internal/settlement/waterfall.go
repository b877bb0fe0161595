package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// allocate pays one tier of claims out of the pool. If the pool covers the
// tier, every claim is paid in full; otherwise every claim receives the
// same fraction of its amount (strict pro-rata, no priority within a
// tier). Returns per-claim payouts parallel to claims, the tier summary,
// and the pool left for the next tier.
//
// Invariants: the tier never pays out more than the incoming pool, and no
// claim receives a negative amount or more than it requested.
func allocate(pool decimal.Decimal, claims []claim) ([]decimal.Decimal, domain.TierSummary, decimal.Decimal) {
	payouts := make([]decimal.Decimal, len(claims))

	requested := decimal.Zero
	for _, c := range claims {
		requested = requested.Add(c.amount)
	}

	// Nothing requested: nothing paid, nothing owed, pool untouched. This
	// also guards the pro-rata division below.
	if requested.IsZero() {
		return payouts, domain.TierSummary{
			Requested: decimal.Zero,
			Paid:      decimal.Zero,
			Remaining: decimal.Zero,
		}, pool
	}

	available := pool
	if available.IsNegative() {
		available = decimal.Zero
	}

	paid := decimal.Min(available, requested)
	if paid.Equal(requested) {
		for i, c := range claims {
			payouts[i] = c.amount
		}
	} else {
		for i, c := range claims {
			payouts[i] = c.amount.Mul(paid).Div(requested)
		}
	}

	summary := domain.TierSummary{
		Requested: requested,
		Paid:      paid,
		Remaining: requested.Sub(paid),
	}
	return payouts, summary, pool.Sub(paid)
}
