package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// SnapshotRepo persists whole project snapshots. An import writes the
// project, its participants, the ledger, the sale and the import hash in
// one transaction, so a failed import leaves no partial project behind.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// ImportSeen reports whether a snapshot with this content hash has been
// imported before.
func (r *SnapshotRepo) ImportSeen(ctx context.Context, hash string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM imports WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}

// ImportSnapshot stores every record of a parsed snapshot atomically and
// marks the content hash as imported.
func (r *SnapshotRepo) ImportSnapshot(
	ctx context.Context,
	project *domain.Project,
	participants []domain.Participant,
	expenses []domain.Expense,
	loans []domain.Loan,
	labor []domain.LaborEntry,
	sale *domain.Sale,
	hash string,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot import: %w", err)
	}
	defer tx.Rollback()

	if err := insertProject(ctx, tx, project); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	for i := range participants {
		if err := insertParticipant(ctx, tx, &participants[i]); err != nil {
			return fmt.Errorf("insert participant %d: %w", i, err)
		}
	}
	for i := range expenses {
		if err := insertExpense(ctx, tx, &expenses[i]); err != nil {
			return fmt.Errorf("insert expense %d: %w", i, err)
		}
	}
	for i := range loans {
		if err := insertLoan(ctx, tx, &loans[i]); err != nil {
			return fmt.Errorf("insert loan %d: %w", i, err)
		}
	}
	for i := range labor {
		if err := insertLabor(ctx, tx, &labor[i]); err != nil {
			return fmt.Errorf("insert labor entry %d: %w", i, err)
		}
	}
	if sale != nil {
		if err := upsertSale(ctx, tx, sale); err != nil {
			return fmt.Errorf("record sale: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO imports (file_hash, project_id, imported_at) VALUES (?,?,?)",
		hash, project.ID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	return tx.Commit()
}
