package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/slotcheck/internal/models"
)

type contextKey int

const scopeKey contextKey = iota

// ScopeFromContext extracts the tenant/academy scope injected by the
// transport layer. The zero Scope means none was set.
func ScopeFromContext(ctx context.Context) models.Scope {
	if s, ok := ctx.Value(scopeKey).(models.Scope); ok {
		return s
	}
	return models.Scope{}
}

// WithScope returns a context carrying the given scope.
func WithScope(ctx context.Context, scope models.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SlotCheck", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SlotCheck schedule conflict server. Check proposed bookings against recurring class templates and scheduled sessions, validate new weekly patterns, and inspect subject schedules. All data is scoped to the configured tenant and academy."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolCheckBooking, Handler: h.checkBooking},
		server.ServerTool{Tool: toolValidateTemplate, Handler: h.validateTemplate},
		server.ServerTool{Tool: toolGetSubjectSchedule, Handler: h.getSubjectSchedule},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTemplateCatalog, Handler: h.templateCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resTemplateCatalog = mcp.NewResource(
	"slotcheck://template_catalog",
	"Template Catalog",
	mcp.WithResourceDescription("All recurring class templates in the configured scope, with weekdays and time windows"),
	mcp.WithMIMEType("application/json"),
)
