package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Scope identifies the tenant and academy a record belongs to. Every query
// the engine issues is bounded by a scope; nothing crosses academies.
type Scope struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	AcademyID uuid.UUID `json:"academy_id"`
}

// SubjectRole distinguishes the two kinds of people a booking can name.
type SubjectRole string

const (
	RoleAthlete SubjectRole = "athlete"
	RoleCoach   SubjectRole = "coach"
)

// Valid reports whether r is a known role.
func (r SubjectRole) Valid() bool {
	return r == RoleAthlete || r == RoleCoach
}

// RecurringTemplate is a weekly class definition: a set of weekdays plus a
// fixed time-of-day window, not anchored to any calendar date. A template
// with no times (and usually no weekdays) is flexible and is scheduled
// per-occurrence through sessions instead.
type RecurringTemplate struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Weekdays  WeekdaySet `json:"weekdays"`
	StartTime *TimeOfDay `json:"start_time,omitempty"`
	EndTime   *TimeOfDay `json:"end_time,omitempty"`
}

var errTemplateTimePair = errors.New("template start and end time must both be set or both be absent")

// Validate enforces the template time invariant: both boundaries present
// with start strictly before end, or both absent (flexible template).
func (t RecurringTemplate) Validate() error {
	if (t.StartTime == nil) != (t.EndTime == nil) {
		return errTemplateTimePair
	}
	if t.StartTime != nil && !t.StartTime.Before(*t.EndTime) {
		return fmt.Errorf("template end time %s must follow start time %s", t.EndTime, t.StartTime)
	}
	return nil
}

// IsFlexible reports whether the template has no fixed time window.
func (t RecurringTemplate) IsFlexible() bool {
	return t.StartTime == nil && t.EndTime == nil
}

// SessionStatus is the lifecycle state of a scheduled session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ScheduledSession is a concrete, date-anchored occurrence. It either
// materializes a template on a date (TemplateID set, times possibly edited
// away from the template's) or is an ad-hoc extra booking (TemplateID nil).
// Cancelled sessions never participate in conflict checks.
type ScheduledSession struct {
	ID         uuid.UUID     `json:"id"`
	TemplateID *uuid.UUID    `json:"template_id,omitempty"`
	Name       string        `json:"name"`
	Date       Date          `json:"date"`
	StartTime  *TimeOfDay    `json:"start_time,omitempty"`
	EndTime    *TimeOfDay    `json:"end_time,omitempty"`
	Status     SessionStatus `json:"status"`
}

// HasBounds reports whether both time boundaries are present. A session with
// a half-set pair is a data-quality defect and is skipped by the overlap
// predicates rather than failing the whole check.
func (s ScheduledSession) HasBounds() bool {
	return s.StartTime != nil && s.EndTime != nil
}
