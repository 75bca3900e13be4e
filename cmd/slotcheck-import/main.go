package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/config"
	"github.com/meltforce/slotcheck/internal/models"
	"github.com/meltforce/slotcheck/internal/roster"
	"github.com/meltforce/slotcheck/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to roster export directory (required)")
	tenantID := flag.String("tenant", "", "tenant UUID (required)")
	academyID := flag.String("academy", "", "academy UUID (required)")
	stateDir := flag.String("state-dir", "", "directory for import state db (optional; disables skip tracking if empty)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" || *tenantID == "" || *academyID == "" {
		fmt.Fprintf(os.Stderr, "Usage: slotcheck-import -config config.yaml -path /path/to/export -tenant UUID -academy UUID [-state-dir DIR] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	scope, err := parseScope(*tenantID, *academyID)
	if err != nil {
		log.Error("invalid scope", "error", err)
		os.Exit(1)
	}

	// Verify export directory exists
	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	var state *roster.StateDB
	if *stateDir != "" {
		state, err = roster.OpenStateDB(*stateDir)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	// Run import
	imp := roster.New(db, state, scope, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func parseScope(tenant, academy string) (models.Scope, error) {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return models.Scope{}, fmt.Errorf("tenant: %w", err)
	}
	academyID, err := uuid.Parse(academy)
	if err != nil {
		return models.Scope{}, fmt.Errorf("academy: %w", err)
	}
	return models.Scope{TenantID: tenantID, AcademyID: academyID}, nil
}

func printStats(log *slog.Logger, stats *roster.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"groups_inserted", stats.GroupsInserted,
		"athletes_inserted", stats.AthletesInserted,
		"coaches_inserted", stats.CoachesInserted,
		"templates_inserted", stats.TemplatesInserted,
		"enrollments_inserted", stats.EnrollmentsInserted,
		"assignments_inserted", stats.AssignmentsInserted,
		"sessions_inserted", stats.SessionsInserted,
		"duplicates", stats.Duplicates,
	)
}
