package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipcrew/flipsettle/internal/domain"
)

func newTestDB(t *testing.T) *ProjectRepo {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepo(db)
}

func TestProjectRepo(t *testing.T) {
	projects := newTestDB(t)
	ctx := context.Background()

	t.Run("create generates id and defaults", func(t *testing.T) {
		p := &domain.Project{Name: "Maple Drive Flip"}
		require.NoError(t, projects.CreateProject(ctx, p))
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, domain.RoundingNearest, p.RoundingMode)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("get round-trips fields", func(t *testing.T) {
		p := &domain.Project{
			Name:                             "Oak Court Flip",
			OwnershipAllowsDeficitBackcharge: true,
			LaborPayoutEnabled:               true,
			RoundingMode:                     domain.RoundingFloor,
		}
		require.NoError(t, projects.CreateProject(ctx, p))

		got, err := projects.GetProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.True(t, got.OwnershipAllowsDeficitBackcharge)
		assert.True(t, got.LaborPayoutEnabled)
		assert.Equal(t, domain.RoundingFloor, got.RoundingMode)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := projects.GetProject(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("participants come back in insertion order", func(t *testing.T) {
		p := &domain.Project{Name: "Pine Lane Flip"}
		require.NoError(t, projects.CreateProject(ctx, p))

		for _, name := range []string{"Alice", "Bob", "Carol"} {
			require.NoError(t, projects.CreateParticipant(ctx, &domain.Participant{
				ProjectID:      p.ID,
				Name:           name,
				OwnershipShare: decimal.RequireFromString("33.33"),
			}))
		}

		got, err := projects.ListParticipants(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Alice", got[0].Name)
		assert.Equal(t, "Bob", got[1].Name)
		assert.Equal(t, "Carol", got[2].Name)
		assert.True(t, got[0].OwnershipShare.Equal(decimal.RequireFromString("33.33")))
	})
}

func TestSnapshotRepo(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	snapshots := NewSnapshotRepo(db)
	projects := NewProjectRepo(db)
	ledger := NewLedgerRepo(db)
	ctx := context.Background()

	t.Run("import stores everything and records the hash", func(t *testing.T) {
		p := &domain.Project{ID: "proj-cedar", Name: "Cedar Way Flip"}
		err := snapshots.ImportSnapshot(ctx, p,
			[]domain.Participant{
				{ID: "part-x", ProjectID: p.ID, Name: "Xena", OwnershipShare: decimal.RequireFromString("100")},
			},
			[]domain.Expense{
				{ProjectID: p.ID, Amount: decimal.RequireFromString("100"), ExternalPayer: "Store"},
				{ProjectID: p.ID, Amount: decimal.RequireFromString("200"), PaidByParticipantID: "part-x"},
			},
			[]domain.Loan{
				{ProjectID: p.ID, Type: domain.LoanPrivate, Principal: decimal.RequireFromString("300"), LenderParticipantID: "part-x"},
			},
			[]domain.LaborEntry{
				{ProjectID: p.ID, ParticipantID: "part-x", Hours: decimal.RequireFromString("1"), HourlyRate: decimal.RequireFromString("2")},
			},
			nil, "hash-cedar",
		)
		require.NoError(t, err)

		participants, err := projects.ListParticipants(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, participants, 1)
		expenses, err := ledger.ListExpenses(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, expenses, 2)
		loans, err := ledger.ListLoans(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, loans, 1)
		labor, err := ledger.ListLabor(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, labor, 1)

		seen, err := snapshots.ImportSeen(ctx, "hash-cedar")
		require.NoError(t, err)
		assert.True(t, seen)

		seen, err = snapshots.ImportSeen(ctx, "hash-other")
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("failed import rolls back every record", func(t *testing.T) {
		p := &domain.Project{ID: "proj-willow", Name: "Willow Bend Flip"}
		err := snapshots.ImportSnapshot(ctx, p,
			[]domain.Participant{
				{ID: "part-dup", ProjectID: p.ID, Name: "First", OwnershipShare: decimal.RequireFromString("50")},
				{ID: "part-dup", ProjectID: p.ID, Name: "Second", OwnershipShare: decimal.RequireFromString("50")},
			},
			nil, nil, nil, nil, "hash-willow",
		)
		require.Error(t, err)

		_, err = projects.GetProject(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound, "project must not survive a failed import")

		seen, err := snapshots.ImportSeen(ctx, "hash-willow")
		require.NoError(t, err)
		assert.False(t, seen, "hash must not be recorded for a failed import")
	})
}

func TestLedgerAndSaleRepos(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	projects := NewProjectRepo(db)
	ledger := NewLedgerRepo(db)
	sales := NewSaleRepo(db)
	ctx := context.Background()

	project := &domain.Project{Name: "Birch Road Flip"}
	require.NoError(t, projects.CreateProject(ctx, project))

	t.Run("expense round trip preserves amounts exactly", func(t *testing.T) {
		e := &domain.Expense{
			ProjectID:           project.ID,
			Amount:              decimal.RequireFromString("12345.67"),
			PaidByParticipantID: "part-1",
			Description:         "Lumber",
		}
		require.NoError(t, ledger.InsertExpense(ctx, e))

		got, err := ledger.ListExpenses(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Amount.Equal(e.Amount), "amount %s", got[0].Amount)
		assert.Equal(t, "part-1", got[0].PaidByParticipantID)
		assert.Empty(t, got[0].ExternalPayer)
	})

	t.Run("loan round trip", func(t *testing.T) {
		l := &domain.Loan{
			ProjectID:   project.ID,
			Type:        domain.LoanOther,
			Principal:   decimal.RequireFromString("1000000"),
			LenderLabel: "Bank",
		}
		require.NoError(t, ledger.InsertLoan(ctx, l))

		got, err := ledger.ListLoans(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.LoanOther, got[0].Type)
		assert.Equal(t, "Bank", got[0].LenderLabel)
		assert.Empty(t, got[0].LenderParticipantID)
	})

	t.Run("labor round trip", func(t *testing.T) {
		le := &domain.LaborEntry{
			ProjectID:     project.ID,
			ParticipantID: "part-1",
			Hours:         decimal.RequireFromString("12.5"),
			HourlyRate:    decimal.RequireFromString("400"),
			IsBillable:    true,
		}
		require.NoError(t, ledger.InsertLabor(ctx, le))

		got, err := ledger.ListLabor(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Hours.Equal(le.Hours))
		assert.True(t, got[0].IsBillable)
	})

	t.Run("sale upsert replaces previous record", func(t *testing.T) {
		sale, err := sales.GetSale(ctx, project.ID)
		require.NoError(t, err)
		assert.Nil(t, sale, "unsold project should have no sale")

		require.NoError(t, sales.UpsertSale(ctx, &domain.Sale{
			ProjectID:      project.ID,
			GrossSalePrice: decimal.RequireFromString("1400000"),
			SaleCosts:      decimal.RequireFromString("40000"),
		}))
		require.NoError(t, sales.UpsertSale(ctx, &domain.Sale{
			ProjectID:      project.ID,
			GrossSalePrice: decimal.RequireFromString("1500000"),
			SaleCosts:      decimal.RequireFromString("50000"),
		}))

		sale, err = sales.GetSale(ctx, project.ID)
		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.True(t, sale.GrossSalePrice.Equal(decimal.RequireFromString("1500000")))
		assert.True(t, sale.SaleCosts.Equal(decimal.RequireFromString("50000")))
	})

	t.Run("corrupt timestamps surface as errors", func(t *testing.T) {
		p2 := &domain.Project{Name: "Cedar Way Flip"}
		require.NoError(t, projects.CreateProject(ctx, p2))

		_, err := db.Exec(
			`INSERT INTO expenses (id, project_id, amount, external_payer, is_sale_cost, created_at)
			VALUES ('exp-bad', ?, '100', 'Store', 0, 'yesterday-ish')`, p2.ID)
		require.NoError(t, err)
		_, err = ledger.ListExpenses(ctx, p2.ID)
		assert.ErrorContains(t, err, "created_at")

		_, err = db.Exec(
			`INSERT INTO loans (id, project_id, type, principal, lender_label, created_at)
			VALUES ('loan-bad', ?, 'other', '100', 'Bank', 'yesterday-ish')`, p2.ID)
		require.NoError(t, err)
		_, err = ledger.ListLoans(ctx, p2.ID)
		assert.ErrorContains(t, err, "created_at")

		_, err = db.Exec(
			`INSERT INTO labor_entries (id, project_id, participant_id, hours, hourly_rate, is_billable, created_at)
			VALUES ('lab-bad', ?, 'part-1', '1', '2', 1, 'yesterday-ish')`, p2.ID)
		require.NoError(t, err)
		_, err = ledger.ListLabor(ctx, p2.ID)
		assert.ErrorContains(t, err, "created_at")

		_, err = db.Exec(
			`INSERT INTO sales (project_id, gross_sale_price, sale_costs, sold_at)
			VALUES (?, '100', '0', 'yesterday-ish')`, p2.ID)
		require.NoError(t, err)
		_, err = sales.GetSale(ctx, p2.ID)
		assert.ErrorContains(t, err, "sold_at")
	})
}
