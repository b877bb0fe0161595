package ingestion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipcrew/flipsettle/internal/repository"
)

const snapshotJSON = `{
	"project": {
		"name": "Elm Street Flip",
		"ownership_allows_deficit_backcharge": true,
		"labor_payout_enabled": true
	},
	"participants": [
		{"id": "part-alice", "name": "Alice", "ownership_share": "60"},
		{"id": "part-bob", "name": "Bob", "ownership_share": "40"}
	],
	"expenses": [
		{"amount": "10000", "paid_by_participant_id": "part-alice"}
	],
	"loans": [
		{"type": "other", "principal": "1000000", "lender_label": "Bank"}
	],
	"labor_entries": [
		{"participant_id": "part-bob", "hours": "100", "hourly_rate": "500", "is_billable": true}
	],
	"sale": {"gross_sale_price": "1500000", "sale_costs": "50000"}
}`

func newService(t *testing.T) (*Service, *repository.ProjectRepo, *repository.LedgerRepo) {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	projects := repository.NewProjectRepo(db)
	ledger := repository.NewLedgerRepo(db)
	return NewService(repository.NewSnapshotRepo(db)), projects, ledger
}

func TestImportSnapshot(t *testing.T) {
	svc, projects, ledger := newService(t)
	ctx := context.Background()

	result, err := svc.ImportSnapshot(ctx, []byte(snapshotJSON))
	require.NoError(t, err)
	assert.NotEmpty(t, result.ProjectID)
	assert.Equal(t, 2, result.Participants)
	assert.Equal(t, 1, result.Expenses)
	assert.Equal(t, 1, result.Loans)
	assert.Equal(t, 1, result.LaborEntries)
	assert.True(t, result.SaleRecorded)

	project, err := projects.GetProject(ctx, result.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Elm Street Flip", project.Name)
	assert.True(t, project.OwnershipAllowsDeficitBackcharge)

	// Participant ids from the document are preserved so ledger records
	// can reference them.
	participants, err := projects.ListParticipants(ctx, result.ProjectID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "part-alice", participants[0].ID)

	expenses, err := ledger.ListExpenses(ctx, result.ProjectID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "part-alice", expenses[0].PaidByParticipantID)
	assert.NotEmpty(t, expenses[0].ID, "missing ids are generated")
}

func TestImportSnapshotIsIdempotent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.ImportSnapshot(ctx, []byte(snapshotJSON))
	require.NoError(t, err)

	_, err = svc.ImportSnapshot(ctx, []byte(snapshotJSON))
	assert.ErrorIs(t, err, ErrDuplicateImport)
}

func TestImportSnapshotFailureLeavesNoPartialProject(t *testing.T) {
	svc, projects, _ := newService(t)
	ctx := context.Background()

	first := `{
		"project": {"name": "Flip A"},
		"participants": [{"id": "part-shared", "name": "Alice", "ownership_share": "100"}]
	}`
	result, err := svc.ImportSnapshot(ctx, []byte(first))
	require.NoError(t, err)

	// Reuses a participant id that already exists, so the insert fails
	// midway. The whole import must roll back.
	second := `{
		"project": {"name": "Flip B"},
		"participants": [{"id": "part-shared", "name": "Mallory", "ownership_share": "100"}]
	}`
	_, err = svc.ImportSnapshot(ctx, []byte(second))
	require.Error(t, err)

	list, err := projects.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "failed import must not leave an orphan project")
	assert.Equal(t, result.ProjectID, list[0].ID)

	// The failed document's hash was not recorded, so a corrected retry
	// with the same bytes would not be treated as a duplicate.
	_, err = svc.ImportSnapshot(ctx, []byte(second))
	assert.NotErrorIs(t, err, ErrDuplicateImport)
}

func TestParseSnapshotRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"project":`},
		{"missing project name", `{"project": {}, "participants": []}`},
		{"participant without name", `{"project": {"name": "x"}, "participants": [{"ownership_share": "50"}]}`},
		{"unknown loan type", `{"project": {"name": "x"}, "loans": [{"type": "margin", "principal": "1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}
