package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanType string

const (
	// LoanPrivate is money lent by a participant; repaid in the first
	// waterfall tier together with out-of-pocket expenses.
	LoanPrivate LoanType = "private"
	// LoanOther is money lent by a non-participant (bank, company);
	// repaid in the second tier.
	LoanOther LoanType = "other"
)

// Expense is a cost paid on behalf of the project. Exactly one of
// PaidByParticipantID and ExternalPayer is set: participant-paid expenses
// are reimbursed in tier 1, externally paid expenses generate no claim.
type Expense struct {
	ID                  string          `json:"id"`
	ProjectID           string          `json:"project_id"`
	Amount              decimal.Decimal `json:"amount"`
	PaidByParticipantID string          `json:"paid_by_participant_id,omitempty"`
	ExternalPayer       string          `json:"external_payer,omitempty"`
	// IsSaleCost marks the expense as a cost of sale; such expenses are
	// deducted from gross sale price when the Sale record carries no
	// explicit sale costs.
	IsSaleCost  bool      `json:"is_sale_cost"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Loan is money lent to the project. LenderParticipantID is set for
// private loans, LenderLabel for other loans.
type Loan struct {
	ID                  string          `json:"id"`
	ProjectID           string          `json:"project_id"`
	Type                LoanType        `json:"type"`
	Principal           decimal.Decimal `json:"principal"`
	LenderParticipantID string          `json:"lender_participant_id,omitempty"`
	LenderLabel         string          `json:"lender_label,omitempty"`
	// InterestNote records agreed interest terms as free text. Interest is
	// never computed into the settlement.
	InterestNote string    `json:"interest_note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LaborEntry is work logged by a participant. Only billable entries are
// claimable, valued at Hours x HourlyRate.
type LaborEntry struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id"`
	ParticipantID string          `json:"participant_id"`
	Hours         decimal.Decimal `json:"hours"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	IsBillable    bool            `json:"is_billable"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Sale records the outcome of selling the property. One per project.
type Sale struct {
	ProjectID      string          `json:"project_id"`
	GrossSalePrice decimal.Decimal `json:"gross_sale_price"`
	SaleCosts      decimal.Decimal `json:"sale_costs"`
	SoldAt         time.Time       `json:"sold_at"`
}
