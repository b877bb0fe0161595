package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// Snapshot is a self-contained project document: the project, its
// participants and its full ledger in one JSON body. Record ids are
// optional; ids present in the file are preserved so that ledger records
// can reference participants defined in the same document.
type Snapshot struct {
	Project      domain.Project       `json:"project"`
	Participants []domain.Participant `json:"participants"`
	Expenses     []domain.Expense     `json:"expenses,omitempty"`
	Loans        []domain.Loan        `json:"loans,omitempty"`
	Labor        []domain.LaborEntry  `json:"labor_entries,omitempty"`
	Sale         *domain.Sale         `json:"sale,omitempty"`
}

// ParseSnapshot decodes and shape-checks a snapshot document. Financial
// consistency (ownership sums, resolvable ids) is deliberately not checked
// here: the settlement engine is specified to fail soft on those.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Project.Name == "" {
		return nil, fmt.Errorf("snapshot project has no name")
	}
	for i, p := range snap.Participants {
		if p.Name == "" {
			return nil, fmt.Errorf("participant %d has no name", i)
		}
	}
	for i, l := range snap.Loans {
		switch l.Type {
		case domain.LoanPrivate, domain.LoanOther:
		default:
			return nil, fmt.Errorf("loan %d has unknown type %q", i, l.Type)
		}
	}
	return &snap, nil
}
