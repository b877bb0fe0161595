package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoundingMode string

const (
	RoundingNearest RoundingMode = "nearest"
	RoundingFloor   RoundingMode = "floor"
	RoundingCeil    RoundingMode = "ceil"
)

// Project is a jointly-owned renovate-and-resell project. The boolean flags
// are settings, not financial facts: they gate how the settlement engine
// treats labor and unpaid external debt.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// OwnershipAllowsDeficitBackcharge controls whether unpaid external
	// debt is charged back to owners by ownership share.
	OwnershipAllowsDeficitBackcharge bool `json:"ownership_allows_deficit_backcharge"`

	// LaborPayoutEnabled controls whether billable labor participates in
	// the waterfall at all.
	LaborPayoutEnabled bool `json:"labor_payout_enabled"`

	// RoundingMode is stored and echoed back to clients but never consulted
	// by the settlement engine; rounding is a presentation concern.
	RoundingMode RoundingMode `json:"rounding_mode"`

	CreatedAt time.Time `json:"created_at"`
}

// Participant is a co-owner of a project. OwnershipShare is a percentage
// (0-100). Shares are expected to sum to 100 across a project's
// participants, but that is enforced by the UI, not here.
type Participant struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	Name           string          `json:"name"`
	OwnershipShare decimal.Decimal `json:"ownership_share"`
}
