package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/slotcheck/internal/conflict"
	"github.com/meltforce/slotcheck/internal/models"
)

// parseUUIDPtr parses an optional UUID parameter. Empty string means absent.
func parseUUIDPtr(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseWeekdays parses a comma-separated list of weekday numbers
// (0=Sunday .. 6=Saturday), e.g. "1,3,5".
func parseWeekdays(s string) (models.WeekdaySet, error) {
	var set models.WeekdaySet
	if s == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return 0, fmt.Errorf("invalid weekday %q: must be 0-6", part)
		}
		set = set.Add(time.Weekday(n))
	}
	return set, nil
}

func parseTimePtr(s string) (*models.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDatePtr(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// --- Tool definitions ---

var toolCheckBooking = mcp.NewTool("check_booking",
	mcp.WithDescription("Check a proposed booking for schedule conflicts. Names up to two subjects (athlete and/or coach); both are checked. Uses either a concrete date (occurrence mode) or a weekday pattern."),
	mcp.WithString("athlete_id", mcp.Description("Athlete UUID to check. At least one of athlete_id or coach_id is required.")),
	mcp.WithString("coach_id", mcp.Description("Coach UUID to check.")),
	mcp.WithString("date", mcp.Description("Concrete date (YYYY-MM-DD) for a one-off booking.")),
	mcp.WithString("weekdays", mcp.Description("Comma-separated weekday numbers (0=Sunday .. 6=Saturday) for a recurring pattern. Mutually exclusive with date.")),
	mcp.WithString("start_time", mcp.Description("Start time (HH:MM). Omit together with end_time for a flexible booking, which never conflicts.")),
	mcp.WithString("end_time", mcp.Description("End time (HH:MM).")),
	mcp.WithString("exclude_template_id", mcp.Description("Template UUID to ignore, when rescheduling an existing commitment.")),
	mcp.WithString("exclude_session_id", mcp.Description("Session UUID to ignore, when rescheduling an existing session.")),
)

var toolValidateTemplate = mcp.NewTool("validate_template",
	mcp.WithDescription("Validate a proposed recurring weekly template against every subject it would bind: the target group's athletes and the coach. Returns all conflicting subjects, not just the first."),
	mcp.WithString("group_id", mcp.Description("Group UUID whose athletes the template would bind. At least one of group_id or coach_id is required.")),
	mcp.WithString("coach_id", mcp.Description("Coach UUID who would teach the template.")),
	mcp.WithString("weekdays", mcp.Required(), mcp.Description("Comma-separated weekday numbers (0=Sunday .. 6=Saturday)")),
	mcp.WithString("start_time", mcp.Description("Start time (HH:MM)")),
	mcp.WithString("end_time", mcp.Description("End time (HH:MM)")),
	mcp.WithString("exclude_template_id", mcp.Description("Template UUID to ignore, when editing an existing template's schedule.")),
)

var toolGetSubjectSchedule = mcp.NewTool("get_subject_schedule",
	mcp.WithDescription("Get a subject's resolved schedule: the recurring templates bound to them and their scheduled sessions."),
	mcp.WithString("subject_id", mcp.Required(), mcp.Description("Subject UUID")),
	mcp.WithString("role", mcp.Description("Subject role: athlete or coach. Defaults to athlete."), mcp.Enum("athlete", "coach")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List all recurring class templates in the configured scope."),
)

// --- Tool handlers ---

// requireScope rejects tool calls when the transport did not establish a
// tenant/academy scope.
func requireScope(ctx context.Context) (models.Scope, *mcp.CallToolResult) {
	scope := ScopeFromContext(ctx)
	if scope.TenantID == uuid.Nil || scope.AcademyID == uuid.Nil {
		return models.Scope{}, mcp.NewToolResultError("no tenant/academy scope configured")
	}
	return scope, nil
}

func (h *handlers) checkBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, errResult := requireScope(ctx)
	if errResult != nil {
		return errResult, nil
	}

	athleteID, err := parseUUIDPtr(req.GetString("athlete_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid athlete_id: " + err.Error()), nil
	}
	coachID, err := parseUUIDPtr(req.GetString("coach_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid coach_id: " + err.Error()), nil
	}
	if athleteID == nil && coachID == nil {
		return mcp.NewToolResultError("at least one of athlete_id or coach_id is required"), nil
	}

	date, err := parseDatePtr(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date: " + err.Error()), nil
	}
	weekdays, err := parseWeekdays(req.GetString("weekdays", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startTime, err := parseTimePtr(req.GetString("start_time", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid start_time: " + err.Error()), nil
	}
	endTime, err := parseTimePtr(req.GetString("end_time", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid end_time: " + err.Error()), nil
	}
	exclTemplate, err := parseUUIDPtr(req.GetString("exclude_template_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid exclude_template_id: " + err.Error()), nil
	}
	exclSession, err := parseUUIDPtr(req.GetString("exclude_session_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid exclude_session_id: " + err.Error()), nil
	}

	result, err := h.ds.CheckBooking(ctx, scope, conflict.BookingRequest{
		AthleteID:         athleteID,
		CoachID:           coachID,
		Date:              date,
		Weekdays:          weekdays,
		StartTime:         startTime,
		EndTime:           endTime,
		ExcludeTemplateID: exclTemplate,
		ExcludeSessionID:  exclSession,
	})
	if err != nil {
		h.log.Error("mcp check_booking", "error", err)
		return mcp.NewToolResultError("check failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(map[string]any{
		"has_conflict":     result.HasConflict(),
		"athlete_conflict": result.AthleteConflict,
		"coach_conflict":   result.CoachConflict,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) validateTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, errResult := requireScope(ctx)
	if errResult != nil {
		return errResult, nil
	}

	groupID, err := parseUUIDPtr(req.GetString("group_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid group_id: " + err.Error()), nil
	}
	coachID, err := parseUUIDPtr(req.GetString("coach_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid coach_id: " + err.Error()), nil
	}
	if groupID == nil && coachID == nil {
		return mcp.NewToolResultError("at least one of group_id or coach_id is required"), nil
	}

	weekdaysStr, err := req.RequireString("weekdays")
	if err != nil {
		return mcp.NewToolResultError("weekdays parameter is required"), nil
	}
	weekdays, err := parseWeekdays(weekdaysStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startTime, err := parseTimePtr(req.GetString("start_time", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid start_time: " + err.Error()), nil
	}
	endTime, err := parseTimePtr(req.GetString("end_time", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid end_time: " + err.Error()), nil
	}
	exclTemplate, err := parseUUIDPtr(req.GetString("exclude_template_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid exclude_template_id: " + err.Error()), nil
	}

	conflicts, err := h.ds.ValidateTemplate(ctx, scope, conflict.TemplateValidation{
		GroupID:           groupID,
		CoachID:           coachID,
		Weekdays:          weekdays,
		StartTime:         startTime,
		EndTime:           endTime,
		ExcludeTemplateID: exclTemplate,
	})
	if err != nil {
		h.log.Error("mcp validate_template", "error", err)
		return mcp.NewToolResultError("validation failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(map[string]any{
		"valid":     len(conflicts) == 0,
		"conflicts": conflicts,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getSubjectSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, errResult := requireScope(ctx)
	if errResult != nil {
		return errResult, nil
	}

	subjectStr, err := req.RequireString("subject_id")
	if err != nil {
		return mcp.NewToolResultError("subject_id parameter is required"), nil
	}
	subjectID, err := uuid.Parse(subjectStr)
	if err != nil {
		return mcp.NewToolResultError("invalid subject_id: " + err.Error()), nil
	}

	role := models.SubjectRole(req.GetString("role", string(models.RoleAthlete)))
	if !role.Valid() {
		return mcp.NewToolResultError("role must be athlete or coach"), nil
	}

	bindings, err := h.ds.SubjectSchedule(ctx, scope, subjectID, role)
	if err != nil {
		h.log.Error("mcp get_subject_schedule", "error", err)
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(map[string]any{
		"subject_id": subjectID,
		"role":       role,
		"templates":  bindings.Templates,
		"sessions":   bindings.Sessions,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, errResult := requireScope(ctx)
	if errResult != nil {
		return errResult, nil
	}

	templates, err := h.ds.ListTemplates(ctx, scope)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("listing failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}
