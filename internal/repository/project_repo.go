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

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// CreateProject inserts a project, generating an ID and timestamp when the
// caller did not provide them.
func (r *ProjectRepo) CreateProject(ctx context.Context, p *domain.Project) error {
	return insertProject(ctx, r.db, p)
}

func insertProject(ctx context.Context, ex execer, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.RoundingMode == "" {
		p.RoundingMode = domain.RoundingNearest
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO projects
		(id, name, ownership_allows_deficit_backcharge, labor_payout_enabled, rounding_mode, created_at)
		VALUES (?,?,?,?,?,?)`,
		p.ID, p.Name, p.OwnershipAllowsDeficitBackcharge, p.LaborPayoutEnabled,
		string(p.RoundingMode), p.CreatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *ProjectRepo) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, ownership_allows_deficit_backcharge, labor_payout_enabled, rounding_mode, created_at
		FROM projects WHERE id = ?`, id,
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, ownership_allows_deficit_backcharge, labor_payout_enabled, rounding_mode, created_at
		FROM projects ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepo) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

func (r *ProjectRepo) CreateParticipant(ctx context.Context, p *domain.Participant) error {
	return insertParticipant(ctx, r.db, p)
}

func insertParticipant(ctx context.Context, ex execer, p *domain.Participant) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO participants (id, project_id, name, ownership_share) VALUES (?,?,?,?)`,
		p.ID, p.ProjectID, p.Name, p.OwnershipShare.String(),
	)
	return err
}

// ListParticipants returns a project's participants in insertion order,
// which is the order the settlement engine reports them in.
func (r *ProjectRepo) ListParticipants(ctx context.Context, projectID string) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, ownership_share FROM participants WHERE project_id = ? ORDER BY rowid`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		var share string
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &share); err != nil {
			return nil, err
		}
		if p.OwnershipShare, err = decimal.NewFromString(share); err != nil {
			return nil, fmt.Errorf("parse ownership share for %s: %w", p.ID, err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var mode, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.OwnershipAllowsDeficitBackcharge,
		&p.LaborPayoutEnabled, &mode, &createdAt); err != nil {
		return nil, err
	}
	p.RoundingMode = domain.RoundingMode(mode)
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}
