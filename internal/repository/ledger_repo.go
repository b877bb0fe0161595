package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// LedgerRepo stores the financial facts the settlement engine consumes:
// expenses, loans and labor entries.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) InsertExpense(ctx context.Context, e *domain.Expense) error {
	return insertExpense(ctx, r.db, e)
}

func insertExpense(ctx context.Context, ex execer, e *domain.Expense) error {
	prepareRecord(&e.ID, &e.CreatedAt)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO expenses
		(id, project_id, amount, paid_by_participant_id, external_payer, is_sale_cost, description, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		e.ID, e.ProjectID, e.Amount.String(), nullable(e.PaidByParticipantID),
		nullable(e.ExternalPayer), e.IsSaleCost, e.Description, e.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *LedgerRepo) ListExpenses(ctx context.Context, projectID string) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, amount, paid_by_participant_id, external_payer, is_sale_cost, description, created_at
		FROM expenses WHERE project_id = ? ORDER BY rowid`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var amount, createdAt string
		var paidBy, external, desc sql.NullString
		if err := rows.Scan(&e.ID, &e.ProjectID, &amount, &paidBy, &external,
			&e.IsSaleCost, &desc, &createdAt); err != nil {
			return nil, err
		}
		if e.Amount, err = parseDecimal(amount, "expense", e.ID); err != nil {
			return nil, err
		}
		e.PaidByParticipantID = paidBy.String
		e.ExternalPayer = external.String
		e.Description = desc.String
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *LedgerRepo) InsertLoan(ctx context.Context, l *domain.Loan) error {
	return insertLoan(ctx, r.db, l)
}

func insertLoan(ctx context.Context, ex execer, l *domain.Loan) error {
	prepareRecord(&l.ID, &l.CreatedAt)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO loans
		(id, project_id, type, principal, lender_participant_id, lender_label, interest_note, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		l.ID, l.ProjectID, string(l.Type), l.Principal.String(),
		nullable(l.LenderParticipantID), nullable(l.LenderLabel), l.InterestNote,
		l.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *LedgerRepo) ListLoans(ctx context.Context, projectID string) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, type, principal, lender_participant_id, lender_label, interest_note, created_at
		FROM loans WHERE project_id = ? ORDER BY rowid`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		var typ, principal, createdAt string
		var lenderID, label, note sql.NullString
		if err := rows.Scan(&l.ID, &l.ProjectID, &typ, &principal, &lenderID,
			&label, &note, &createdAt); err != nil {
			return nil, err
		}
		l.Type = domain.LoanType(typ)
		if l.Principal, err = parseDecimal(principal, "loan", l.ID); err != nil {
			return nil, err
		}
		l.LenderParticipantID = lenderID.String
		l.LenderLabel = label.String
		l.InterestNote = note.String
		if l.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for loan %s: %w", l.ID, err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *LedgerRepo) InsertLabor(ctx context.Context, le *domain.LaborEntry) error {
	return insertLabor(ctx, r.db, le)
}

func insertLabor(ctx context.Context, ex execer, le *domain.LaborEntry) error {
	prepareRecord(&le.ID, &le.CreatedAt)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO labor_entries
		(id, project_id, participant_id, hours, hourly_rate, is_billable, description, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		le.ID, le.ProjectID, le.ParticipantID, le.Hours.String(), le.HourlyRate.String(),
		le.IsBillable, le.Description, le.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *LedgerRepo) ListLabor(ctx context.Context, projectID string) ([]domain.LaborEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, participant_id, hours, hourly_rate, is_billable, description, created_at
		FROM labor_entries WHERE project_id = ? ORDER BY rowid`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LaborEntry
	for rows.Next() {
		var le domain.LaborEntry
		var hours, rate, createdAt string
		var desc sql.NullString
		if err := rows.Scan(&le.ID, &le.ProjectID, &le.ParticipantID, &hours,
			&rate, &le.IsBillable, &desc, &createdAt); err != nil {
			return nil, err
		}
		if le.Hours, err = parseDecimal(hours, "labor entry", le.ID); err != nil {
			return nil, err
		}
		if le.HourlyRate, err = parseDecimal(rate, "labor entry", le.ID); err != nil {
			return nil, err
		}
		le.Description = desc.String
		if le.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for labor entry %s: %w", le.ID, err)
		}
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

// --- helpers ---

func prepareRecord(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseDecimal(s, kind, id string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount for %s %s: %w", kind, id, err)
	}
	return d, nil
}
