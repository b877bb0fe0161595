package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flipcrew/flipsettle/internal/domain"
)

// SaleRepo stores the one-per-project sale record.
type SaleRepo struct {
	db *sql.DB
}

func NewSaleRepo(db *sql.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// UpsertSale records or replaces the project's sale.
func (r *SaleRepo) UpsertSale(ctx context.Context, s *domain.Sale) error {
	return upsertSale(ctx, r.db, s)
}

func upsertSale(ctx context.Context, ex execer, s *domain.Sale) error {
	if s.SoldAt.IsZero() {
		s.SoldAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO sales (project_id, gross_sale_price, sale_costs, sold_at)
		VALUES (?,?,?,?)
		ON CONFLICT(project_id) DO UPDATE SET
			gross_sale_price = excluded.gross_sale_price,
			sale_costs = excluded.sale_costs,
			sold_at = excluded.sold_at`,
		s.ProjectID, s.GrossSalePrice.String(), s.SaleCosts.String(),
		s.SoldAt.Format(time.RFC3339),
	)
	return err
}

// GetSale returns the project's sale, or nil when the property has not
// been sold yet.
func (r *SaleRepo) GetSale(ctx context.Context, projectID string) (*domain.Sale, error) {
	var s domain.Sale
	var gross, costs, soldAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id, gross_sale_price, sale_costs, sold_at FROM sales WHERE project_id = ?`,
		projectID,
	).Scan(&s.ProjectID, &gross, &costs, &soldAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.GrossSalePrice, err = parseDecimal(gross, "sale", projectID); err != nil {
		return nil, err
	}
	if s.SaleCosts, err = parseDecimal(costs, "sale", projectID); err != nil {
		return nil, err
	}
	if s.SoldAt, err = time.Parse(time.RFC3339, soldAt); err != nil {
		return nil, fmt.Errorf("parse sold_at for %s: %w", projectID, err)
	}
	return &s, nil
}
