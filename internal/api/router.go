package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flipcrew/flipsettle/internal/ingestion"
	"github.com/flipcrew/flipsettle/internal/repository"
	"github.com/flipcrew/flipsettle/internal/settlement"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	projectRepo *repository.ProjectRepo,
	ledgerRepo *repository.LedgerRepo,
	saleRepo *repository.SaleRepo,
	settlementSvc *settlement.Service,
	ingestionSvc *ingestion.Service,
) http.Handler {
	h := &Handlers{
		projects:      projectRepo,
		ledger:        ledgerRepo,
		sales:         saleRepo,
		settlementSvc: settlementSvc,
		ingestionSvc:  ingestionSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Projects.
		r.Post("/projects", h.CreateProject)
		r.Get("/projects", h.ListProjects)
		r.Post("/projects/import", h.ImportSnapshot)
		r.Get("/projects/{id}", h.GetProject)

		// Participants.
		r.Post("/projects/{id}/participants", h.CreateParticipant)

		// Ledger records.
		r.Post("/projects/{id}/expenses", h.CreateExpense)
		r.Get("/projects/{id}/expenses", h.ListExpenses)
		r.Post("/projects/{id}/loans", h.CreateLoan)
		r.Get("/projects/{id}/loans", h.ListLoans)
		r.Post("/projects/{id}/labor", h.CreateLabor)
		r.Get("/projects/{id}/labor", h.ListLabor)

		// Sale.
		r.Put("/projects/{id}/sale", h.UpsertSale)
		r.Get("/projects/{id}/sale", h.GetSale)

		// The settlement itself.
		r.Get("/projects/{id}/settlement", h.GetSettlement)
	})

	return r
}
