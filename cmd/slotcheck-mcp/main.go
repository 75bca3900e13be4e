// slotcheck-mcp serves the conflict engine over MCP stdio, for use as an
// assistant tool server. It runs in one of two modes: local (direct database
// access via -config) or remote (REST calls to a running slotcheck server
// via -remote, e.g. over Tailscale).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/slotcheck/internal/config"
	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/mcp"
	"github.com/meltforce/slotcheck/internal/models"
	"github.com/meltforce/slotcheck/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	remoteURL := flag.String("remote", "", "base URL of a running slotcheck server (remote mode)")
	apiKey := flag.String("api-key", "", "API key for remote mode")
	tenantID := flag.String("tenant", "", "tenant UUID (required)")
	academyID := flag.String("academy", "", "academy UUID (required)")
	flag.Parse()

	// MCP stdio owns stdout; log to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *tenantID == "" || *academyID == "" {
		fmt.Fprintf(os.Stderr, "Usage: slotcheck-mcp (-config config.yaml | -remote URL -api-key KEY) -tenant UUID -academy UUID\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	scope, err := parseScope(*tenantID, *academyID)
	if err != nil {
		log.Error("invalid scope", "error", err)
		os.Exit(1)
	}

	var ds mcp.DataSource
	switch {
	case *remoteURL != "":
		if *apiKey == "" {
			log.Error("remote mode requires -api-key")
			os.Exit(1)
		}
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey, scope)
		log.Info("remote mode", "url", *remoteURL)

	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		policy := conflict.SessionSupersedes
		if cfg.Engine.OverridePolicy == "check_both" {
			policy = conflict.CheckBoth
		}
		resolver := conflict.NewResolver(db, db, db, log)
		checker := conflict.NewChecker(resolver, policy, log)
		ds = mcp.Local{Checker: checker, DB: db}
		log.Info("local mode", "database", cfg.Database.Name)

	default:
		log.Error("one of -config or -remote is required")
		os.Exit(1)
	}

	s := mcp.New(ds, Version, log)

	err = mcpserver.ServeStdio(s,
		mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithScope(ctx, scope)
		}),
	)
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
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
