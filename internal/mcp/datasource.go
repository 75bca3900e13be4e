package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/models"
	"github.com/meltforce/slotcheck/internal/storage"
)

// DataSource abstracts the engine for MCP tools. Local (in-process checker
// and store) and HTTPClient (remote via REST API) both satisfy this
// interface.
type DataSource interface {
	CheckBooking(ctx context.Context, scope models.Scope, req conflict.BookingRequest) (models.BookingCheck, error)
	ValidateTemplate(ctx context.Context, scope models.Scope, v conflict.TemplateValidation) ([]models.SubjectConflict, error)
	SubjectSchedule(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) (conflict.Bindings, error)
	ListTemplates(ctx context.Context, scope models.Scope) ([]models.RecurringTemplate, error)
}

// Local bundles the in-process checker and store into a DataSource.
type Local struct {
	*conflict.Checker
	*storage.DB
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}
