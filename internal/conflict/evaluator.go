package conflict

import (
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// OverridePolicy decides how a template-generated session relates to its
// parent template on the session's date. The upstream data model does not
// pin this down, so it is explicit configuration rather than an assumption
// baked into the scan.
type OverridePolicy int

const (
	// SessionSupersedes skips a template on any date for which a linked
	// session exists; the session's own (possibly edited) time is what
	// counts. This avoids double-counting a template and its generated
	// session for the same day. Default.
	SessionSupersedes OverridePolicy = iota

	// CheckBoth compares the candidate against both the template's default
	// time and the session's time.
	CheckBoth
)

// Evaluator scans a subject's bindings for the first commitment overlapping
// a candidate. Templates are checked before sessions: they are the steady
// state and the common hit, while sessions carry exceptions whose override
// semantics the policy handles.
type Evaluator struct {
	Policy OverridePolicy
}

// Evaluate returns the first conflict between the candidate and the
// bindings, or nil when the candidate is clear. First match wins; the scan
// does not continue past it.
func (e Evaluator) Evaluate(c models.CandidateBooking, b Bindings) *models.Conflict {
	if !c.HasBounds() {
		return nil
	}

	if c.Date != nil {
		if conflict := e.evaluateOnDate(c, *c.Date, b); conflict != nil {
			return conflict
		}
		return nil
	}

	// Pattern mode: the candidate is a proposed recurring weekly window.
	for _, day := range c.Weekdays.Days() {
		if conflict := e.evaluatePattern(c, day, b); conflict != nil {
			return conflict
		}
	}
	return nil
}

// evaluateOnDate checks one concrete calendar date.
func (e Evaluator) evaluateOnDate(c models.CandidateBooking, date models.Date, b Bindings) *models.Conflict {
	day := date.Weekday()

	var overridden map[uuid.UUID]bool
	if e.Policy == SessionSupersedes {
		overridden = overriddenTemplates(b.Sessions, date)
	}

	for _, t := range b.Templates {
		if c.ExcludeTemplateID != nil && t.ID == *c.ExcludeTemplateID {
			continue
		}
		if !t.Weekdays.Has(day) {
			continue
		}
		if overridden[t.ID] {
			continue
		}
		if TimeOfDayOverlaps(c.StartTime, c.EndTime, t.StartTime, t.EndTime) {
			return &models.Conflict{
				SourceKind: models.SourceTemplate,
				SourceID:   t.ID,
				SourceName: t.Name,
				Weekday:    day,
				Date:       &date,
				Start:      *t.StartTime,
				End:        *t.EndTime,
			}
		}
	}

	candStart := date.At(*c.StartTime, time.UTC)
	candEnd := date.At(*c.EndTime, time.UTC)

	for _, s := range b.Sessions {
		if c.ExcludeSessionID != nil && s.ID == *c.ExcludeSessionID {
			continue
		}
		if s.Date != date || !s.HasBounds() {
			continue
		}
		if InstantOverlaps(candStart, candEnd, s.Date.At(*s.StartTime, time.UTC), s.Date.At(*s.EndTime, time.UTC)) {
			sessionDate := s.Date
			return &models.Conflict{
				SourceKind: models.SourceSession,
				SourceID:   s.ID,
				SourceName: s.Name,
				Weekday:    day,
				Date:       &sessionDate,
				Start:      *s.StartTime,
				End:        *s.EndTime,
			}
		}
	}

	return nil
}

// evaluatePattern checks one weekday of a proposed recurring window. A
// recurring pattern repeats indefinitely, so any session falling on a
// matching weekday counts, regardless of its date.
func (e Evaluator) evaluatePattern(c models.CandidateBooking, day time.Weekday, b Bindings) *models.Conflict {
	for _, t := range b.Templates {
		if c.ExcludeTemplateID != nil && t.ID == *c.ExcludeTemplateID {
			continue
		}
		if !t.Weekdays.Has(day) {
			continue
		}
		if TimeOfDayOverlaps(c.StartTime, c.EndTime, t.StartTime, t.EndTime) {
			return &models.Conflict{
				SourceKind: models.SourceTemplate,
				SourceID:   t.ID,
				SourceName: t.Name,
				Weekday:    day,
				Start:      *t.StartTime,
				End:        *t.EndTime,
			}
		}
	}

	for _, s := range b.Sessions {
		if c.ExcludeSessionID != nil && s.ID == *c.ExcludeSessionID {
			continue
		}
		if s.Date.Weekday() != day || !s.HasBounds() {
			continue
		}
		if TimeOfDayOverlaps(c.StartTime, c.EndTime, s.StartTime, s.EndTime) {
			sessionDate := s.Date
			return &models.Conflict{
				SourceKind: models.SourceSession,
				SourceID:   s.ID,
				SourceName: s.Name,
				Weekday:    day,
				Date:       &sessionDate,
				Start:      *s.StartTime,
				End:        *s.EndTime,
			}
		}
	}

	return nil
}

// overriddenTemplates maps template ids to true for every template that has
// a linked session on the given date.
func overriddenTemplates(sessions []models.ScheduledSession, date models.Date) map[uuid.UUID]bool {
	var m map[uuid.UUID]bool
	for _, s := range sessions {
		if s.TemplateID == nil || s.Date != date {
			continue
		}
		if m == nil {
			m = make(map[uuid.UUID]bool)
		}
		m[*s.TemplateID] = true
	}
	return m
}
