package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateBooking is the time block being validated for one subject. Two
// shapes are valid:
//
//   - occurrence mode: Date set, Weekdays empty — one concrete time block on
//     a calendar date (ad-hoc booking or a single session);
//   - pattern mode: Date nil, Weekdays set — a proposed recurring weekly
//     pattern being validated before a template is saved.
//
// ExcludeTemplateID/ExcludeSessionID name the record being edited so it is
// not compared against itself.
type CandidateBooking struct {
	SubjectID uuid.UUID   `json:"subject_id"`
	Role      SubjectRole `json:"role"`

	Date      *Date      `json:"date,omitempty"`
	Weekdays  WeekdaySet `json:"weekdays,omitempty"`
	StartTime *TimeOfDay `json:"start_time,omitempty"`
	EndTime   *TimeOfDay `json:"end_time,omitempty"`

	ExcludeTemplateID *uuid.UUID `json:"exclude_template_id,omitempty"`
	ExcludeSessionID  *uuid.UUID `json:"exclude_session_id,omitempty"`
}

// HasBounds reports whether the candidate carries both time boundaries.
// An unbounded candidate cannot be checked and never conflicts; warning the
// user about unbounded bookings is the presentation layer's job.
func (c CandidateBooking) HasBounds() bool {
	return c.StartTime != nil && c.EndTime != nil
}

// SourceKind tags which schedule representation produced a conflict.
type SourceKind string

const (
	SourceTemplate SourceKind = "template"
	SourceSession  SourceKind = "session"
)

// Conflict describes one overlapping commitment with enough structure for
// the caller to render an actionable message — never a bare boolean.
type Conflict struct {
	SourceKind SourceKind   `json:"source_kind"`
	SourceID   uuid.UUID    `json:"source_id"`
	SourceName string       `json:"source_name"`
	Weekday    time.Weekday `json:"weekday"`
	Date       *Date        `json:"date,omitempty"`
	Start      TimeOfDay    `json:"start"`
	End        TimeOfDay    `json:"end"`
}

// BookingCheck is the outcome of a dual-subject check. A nil side means that
// subject has no conflict (or the booking did not name that subject). Both
// sides are always evaluated so the caller can report every violation at
// once instead of forcing a fix-and-resubmit loop.
type BookingCheck struct {
	AthleteConflict *Conflict `json:"athlete_conflict,omitempty"`
	CoachConflict   *Conflict `json:"coach_conflict,omitempty"`
}

// HasConflict reports whether either subject conflicts.
func (b BookingCheck) HasConflict() bool {
	return b.AthleteConflict != nil || b.CoachConflict != nil
}

// SubjectConflict pairs a conflict with the subject it was found for, used
// when validating a proposed template against every subject it would bind.
type SubjectConflict struct {
	SubjectID uuid.UUID   `json:"subject_id"`
	Role      SubjectRole `json:"role"`
	Conflict  Conflict    `json:"conflict"`
}
