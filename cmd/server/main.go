package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/flipcrew/flipsettle/internal/api"
	"github.com/flipcrew/flipsettle/internal/config"
	"github.com/flipcrew/flipsettle/internal/ingestion"
	"github.com/flipcrew/flipsettle/internal/repository"
	"github.com/flipcrew/flipsettle/internal/settlement"
	"github.com/flipcrew/flipsettle/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		slog.Error("init db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories.
	projectRepo := repository.NewProjectRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)

	// Services.
	settlementSvc := settlement.NewService(projectRepo, ledgerRepo, saleRepo)
	ingestionSvc := ingestion.NewService(snapshotRepo)

	// Seed a demo project if the DB is empty.
	if cfg.SeedPath != "" {
		if err := seedIfEmpty(projectRepo, ingestionSvc, cfg.SeedPath); err != nil {
			slog.Warn("seed failed", "path", cfg.SeedPath, "error", err)
		}
	}

	router := api.NewRouter(projectRepo, ledgerRepo, saleRepo, settlementSvc, ingestionSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("flipsettle server listening",
		"addr", addr,
		"api_base", fmt.Sprintf("http://localhost%s/api/v1", addr),
	)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func seedIfEmpty(projects *repository.ProjectRepo, svc *ingestion.Service, path string) error {
	ctx := context.Background()
	count, err := projects.CountProjects(ctx)
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if count > 0 {
		slog.Info("database already has projects, skipping seed", "count", count)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	result, err := svc.ImportSnapshot(ctx, data)
	if err != nil {
		return fmt.Errorf("import seed snapshot: %w", err)
	}
	slog.Info("seeded demo project", "project_id", result.ProjectID)
	return nil
}
