// Package ingestion imports whole project snapshots: one JSON document
// carrying a project, its participants and its ledger. Imports are
// idempotent by content hash, so re-posting the same file is a no-op
// rejected with ErrDuplicateImport.
package ingestion

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flipcrew/flipsettle/internal/domain"
	"github.com/flipcrew/flipsettle/internal/repository"
)

// ErrDuplicateImport is returned when a byte-identical snapshot has been
// imported before.
var ErrDuplicateImport = errors.New("snapshot already imported")

// Result summarises a successful import.
type Result struct {
	ProjectID    string `json:"project_id"`
	Participants int    `json:"participants"`
	Expenses     int    `json:"expenses"`
	Loans        int    `json:"loans"`
	LaborEntries int    `json:"labor_entries"`
	SaleRecorded bool   `json:"sale_recorded"`
}

type Service struct {
	snapshots *repository.SnapshotRepo
}

func NewService(snapshots *repository.SnapshotRepo) *Service {
	return &Service{snapshots: snapshots}
}

// ImportSnapshot parses one snapshot document and stores it in a single
// transaction. A rejected document leaves the database untouched.
func (s *Service) ImportSnapshot(ctx context.Context, data []byte) (*Result, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	seen, err := s.snapshots.ImportSeen(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check import hash: %w", err)
	}
	if seen {
		return nil, ErrDuplicateImport
	}

	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}

	project := snap.Project
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	for i := range snap.Participants {
		snap.Participants[i].ProjectID = project.ID
	}
	for i := range snap.Expenses {
		snap.Expenses[i].ProjectID = project.ID
	}
	for i := range snap.Loans {
		snap.Loans[i].ProjectID = project.ID
	}
	for i := range snap.Labor {
		snap.Labor[i].ProjectID = project.ID
	}
	var sale *domain.Sale
	if snap.Sale != nil {
		copied := *snap.Sale
		copied.ProjectID = project.ID
		sale = &copied
	}

	if err := s.snapshots.ImportSnapshot(ctx, &project, snap.Participants,
		snap.Expenses, snap.Loans, snap.Labor, sale, hash); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	result := &Result{
		ProjectID:    project.ID,
		Participants: len(snap.Participants),
		Expenses:     len(snap.Expenses),
		Loans:        len(snap.Loans),
		LaborEntries: len(snap.Labor),
		SaleRecorded: snap.Sale != nil,
	}
	slog.Info("snapshot imported",
		"project_id", project.ID,
		"participants", result.Participants,
		"expenses", result.Expenses,
		"loans", result.Loans,
		"labor_entries", result.LaborEntries,
		"sale", result.SaleRecorded,
	)
	return result, nil
}
