// Package server exposes the conflict engine over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/models"
)

// Engine is the conflict engine surface the handlers need.
type Engine interface {
	CheckBooking(ctx context.Context, scope models.Scope, req conflict.BookingRequest) (models.BookingCheck, error)
	ValidateTemplate(ctx context.Context, scope models.Scope, v conflict.TemplateValidation) ([]models.SubjectConflict, error)
	SubjectSchedule(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) (conflict.Bindings, error)
}

// Compile-time check: the real checker satisfies Engine.
var _ Engine = (*conflict.Checker)(nil)

// TemplateLister lists templates in a scope, for the read-only catalog view.
type TemplateLister interface {
	ListTemplates(ctx context.Context, scope models.Scope) ([]models.RecurringTemplate, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine    Engine
	templates TemplateLister
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a Server with all routes configured.
func New(engine Engine, templates TemplateLister, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		engine:    engine,
		templates: templates,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/healthz", s.handleHealthz)

	// Check endpoints (API key required — callers are backend flows, not
	// browsers)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/bookings/check", s.handleCheckBooking)
		r.Post("/api/v1/templates/validate", s.handleValidateTemplate)
	})

	// Read-only schedule views
	s.router.Get("/api/v1/subjects/{id}/schedule", s.handleSubjectSchedule)
	s.router.Get("/api/v1/templates", s.handleListTemplates)
}
