package main

import (
	"fmt"
	"os"

	"huurhuis-scraper/config"
	"huurhuis-scraper/notify"
	"huurhuis-scraper/scraper"
	"huurhuis-scraper/services"
	"huurhuis-scraper/storage"
	"huurhuis-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	logger.Info("=== Huurhuis Scraping System starting ===")
	logger.Info("Config — pages: %d | concurrency: %d | retries: %d | price filter: %v (max €%d)",
		cfg.MaxPages, cfg.Concurrency, cfg.MaxRetries, cfg.FilteringEnabled, cfg.MaxPrice)

	agencies, err := config.LoadAgencies(cfg.AgenciesPath)
	if err != nil {
		logger.Error("Failed to load agency roster: %v", err)
		os.Exit(1)
	}
	logger.Info("Loaded %d agencies from %s", len(agencies), cfg.AgenciesPath)

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	registry := scraper.NewRegistry(logger, cfg.MaxRetries)
	reconciler := services.NewReconciler(logger, cfg.FilteringEnabled, cfg.MaxPrice)
	pipeline := services.NewPipeline(store, registry, reconciler, logger,
		cfg.MaxPages, cfg.Concurrency)

	allNew, allRemoved := pipeline.Run(agencies)

	applier := services.NewApplier(store, logger)
	appliedNew, appliedRemoved := applier.Apply(allNew, allRemoved)

	if len(allNew) > 0 {
		mailer := notify.NewMailer(cfg, logger)
		if err := mailer.SendNewListings(allNew); err != nil {
			logger.Error("Mail notification failed: %v", err)
		}
	} else {
		logger.Info("No new listings found — skipping mail notification")
	}

	reportSvc := services.NewReportService(logger)
	report := reportSvc.Generate(allNew, allRemoved, appliedNew, appliedRemoved)
	reportSvc.Print(report)

	fmt.Printf("  Done. %d new listings stored, %d stale listings removed (PostgreSQL)\n\n",
		appliedNew, appliedRemoved)
}
