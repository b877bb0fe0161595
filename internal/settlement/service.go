package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flipcrew/flipsettle/internal/domain"
	"github.com/flipcrew/flipsettle/internal/repository"
)

var settlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "flipsettle_settlements_computed_total",
	Help: "Number of settlement computations run.",
})

// Service loads a project's financial snapshot from storage and runs the
// pure engine over it. All mutation of the underlying records happens
// elsewhere; a settlement is recomputed from scratch on every call.
type Service struct {
	projects *repository.ProjectRepo
	ledger   *repository.LedgerRepo
	sales    *repository.SaleRepo
}

func NewService(
	projects *repository.ProjectRepo,
	ledger *repository.LedgerRepo,
	sales *repository.SaleRepo,
) *Service {
	return &Service{projects: projects, ledger: ledger, sales: sales}
}

// ForProject computes the settlement for one project. Returns
// repository.ErrNotFound when the project does not exist.
func (s *Service) ForProject(ctx context.Context, projectID string) (*domain.SettlementResult, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	participants, err := s.projects.ListParticipants(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	expenses, err := s.ledger.ListExpenses(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	loans, err := s.ledger.ListLoans(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	labor, err := s.ledger.ListLabor(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load labor entries: %w", err)
	}
	sale, err := s.sales.GetSale(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load sale: %w", err)
	}

	result := Compute(Input{
		Project:      *project,
		Participants: participants,
		Expenses:     expenses,
		Loans:        loans,
		Labor:        labor,
		Sale:         sale,
	})
	settlementsComputed.Inc()

	slog.Info("settlement computed",
		"project_id", projectID,
		"net_proceeds", result.NetProceeds,
		"tier1_paid", result.PrivateClaims.Paid,
		"tier2_paid", result.ExternalLoans.Paid,
		"tier3_paid", result.Labor.Paid,
		"equity_pool", result.Equity.Pool,
		"unresolved_refs", len(result.UnresolvedRefs),
	)

	return &result, nil
}
