package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseScope reads the tenant and academy identifiers every data-touching
// endpoint requires. Both must be valid UUIDs.
func parseScope(r *http.Request) (models.Scope, error) {
	tenantID, err := uuid.Parse(r.Header.Get("X-Tenant-ID"))
	if err != nil {
		return models.Scope{}, errScope{"invalid or missing X-Tenant-ID header"}
	}
	academyID, err := uuid.Parse(r.Header.Get("X-Academy-ID"))
	if err != nil {
		return models.Scope{}, errScope{"invalid or missing X-Academy-ID header"}
	}
	return models.Scope{TenantID: tenantID, AcademyID: academyID}, nil
}

type errScope struct{ msg string }

func (e errScope) Error() string { return e.msg }

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheckBooking runs the conflict check for a proposed booking.
//
//	POST /api/v1/bookings/check
func (s *Server) handleCheckBooking(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req conflict.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if req.AthleteID == nil && req.CoachID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one of athlete_id or coach_id is required"})
		return
	}

	result, err := s.engine.CheckBooking(r.Context(), scope, req)
	if err != nil {
		s.log.Error("booking check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "check failed"})
		return
	}

	writeJSON(w, http.StatusOK, checkBookingResponse{
		HasConflict:     result.HasConflict(),
		AthleteConflict: result.AthleteConflict,
		CoachConflict:   result.CoachConflict,
	})
}

type checkBookingResponse struct {
	HasConflict     bool             `json:"has_conflict"`
	AthleteConflict *models.Conflict `json:"athlete_conflict,omitempty"`
	CoachConflict   *models.Conflict `json:"coach_conflict,omitempty"`
}

// handleValidateTemplate checks a proposed weekly pattern against all
// subjects it would bind.
//
//	POST /api/v1/templates/validate
func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var v conflict.TemplateValidation
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if v.GroupID == nil && v.CoachID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one of group_id or coach_id is required"})
		return
	}

	conflicts, err := s.engine.ValidateTemplate(r.Context(), scope, v)
	if err != nil {
		s.log.Error("template validation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "validation failed"})
		return
	}

	writeJSON(w, http.StatusOK, validateTemplateResponse{
		Valid:     len(conflicts) == 0,
		Conflicts: conflicts,
	})
}

type validateTemplateResponse struct {
	Valid     bool                     `json:"valid"`
	Conflicts []models.SubjectConflict `json:"conflicts,omitempty"`
}

// handleSubjectSchedule returns a subject's resolved templates and sessions.
//
//	GET /api/v1/subjects/{id}/schedule?role=athlete
func (s *Server) handleSubjectSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	subjectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subject id"})
		return
	}

	role := models.SubjectRole(r.URL.Query().Get("role"))
	if role == "" {
		role = models.RoleAthlete
	}
	if !role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be athlete or coach"})
		return
	}

	bindings, err := s.engine.SubjectSchedule(r.Context(), scope, subjectID, role)
	if err != nil {
		s.log.Error("schedule lookup failed", "subject_id", subjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, subjectScheduleResponse{
		SubjectID: subjectID,
		Role:      role,
		Templates: bindings.Templates,
		Sessions:  bindings.Sessions,
	})
}

type subjectScheduleResponse struct {
	SubjectID uuid.UUID                  `json:"subject_id"`
	Role      models.SubjectRole         `json:"role"`
	Templates []models.RecurringTemplate `json:"templates"`
	Sessions  []models.ScheduledSession  `json:"sessions"`
}

// handleListTemplates returns all templates in the scope.
//
//	GET /api/v1/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	scope, err := parseScope(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	templates, err := s.templates.ListTemplates(r.Context(), scope)
	if err != nil {
		s.log.Error("template listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing failed"})
		return
	}
	if templates == nil {
		templates = []models.RecurringTemplate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}
