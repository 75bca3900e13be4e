package conflict

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// BookingRequest is a proposed booking naming up to two subjects: the
// athlete being booked and the coach delivering it. Either may be absent.
type BookingRequest struct {
	AthleteID *uuid.UUID `json:"athlete_id,omitempty"`
	CoachID   *uuid.UUID `json:"coach_id,omitempty"`

	Date      *models.Date      `json:"date,omitempty"`
	Weekdays  models.WeekdaySet `json:"weekdays,omitempty"`
	StartTime *models.TimeOfDay `json:"start_time,omitempty"`
	EndTime   *models.TimeOfDay `json:"end_time,omitempty"`

	ExcludeTemplateID *uuid.UUID `json:"exclude_template_id,omitempty"`
	ExcludeSessionID  *uuid.UUID `json:"exclude_session_id,omitempty"`
}

// TemplateValidation is a proposed recurring template checked against every
// subject it would bind before it is saved: the target group's athletes and
// the coach who would teach it.
type TemplateValidation struct {
	GroupID *uuid.UUID `json:"group_id,omitempty"`
	CoachID *uuid.UUID `json:"coach_id,omitempty"`

	Weekdays  models.WeekdaySet `json:"weekdays"`
	StartTime *models.TimeOfDay `json:"start_time,omitempty"`
	EndTime   *models.TimeOfDay `json:"end_time,omitempty"`

	// ExcludeTemplateID is set when an existing template's schedule is being
	// edited, so it does not conflict with itself.
	ExcludeTemplateID *uuid.UUID `json:"exclude_template_id,omitempty"`
}

// Checker ties the resolver and evaluator together and is the engine's
// single entry point for callers. It holds no mutable state: every check
// resolves bindings fresh, so concurrent checks need no locking. It answers
// "does a conflict exist right now" only — serializing the actual write
// against concurrent bookings is the persistence layer's job.
type Checker struct {
	resolver *Resolver
	eval     Evaluator
	log      *slog.Logger
}

// NewChecker creates a Checker with the given override policy.
func NewChecker(resolver *Resolver, policy OverridePolicy, log *slog.Logger) *Checker {
	return &Checker{resolver: resolver, eval: Evaluator{Policy: policy}, log: log}
}

// CheckBooking evaluates the request once per named subject. Both sides are
// always evaluated — an athlete conflict does not short-circuit the coach
// check — so the caller can report every violation in one round trip.
func (c *Checker) CheckBooking(ctx context.Context, scope models.Scope, req BookingRequest) (models.BookingCheck, error) {
	var result models.BookingCheck

	if req.AthleteID != nil {
		conflict, err := c.checkSubject(ctx, scope, *req.AthleteID, models.RoleAthlete, req)
		if err != nil {
			return models.BookingCheck{}, fmt.Errorf("checking athlete: %w", err)
		}
		result.AthleteConflict = conflict
	}

	if req.CoachID != nil {
		conflict, err := c.checkSubject(ctx, scope, *req.CoachID, models.RoleCoach, req)
		if err != nil {
			return models.BookingCheck{}, fmt.Errorf("checking coach: %w", err)
		}
		result.CoachConflict = conflict
	}

	return result, nil
}

func (c *Checker) checkSubject(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole, req BookingRequest) (*models.Conflict, error) {
	bindings, err := c.resolver.Resolve(ctx, scope, subjectID, role)
	if err != nil {
		return nil, err
	}

	candidate := models.CandidateBooking{
		SubjectID:         subjectID,
		Role:              role,
		Date:              req.Date,
		Weekdays:          req.Weekdays,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		ExcludeTemplateID: req.ExcludeTemplateID,
		ExcludeSessionID:  req.ExcludeSessionID,
	}

	conflict := c.eval.Evaluate(candidate, bindings)
	if conflict != nil {
		c.log.Info("conflict found",
			"subject_id", subjectID,
			"role", string(role),
			"source_kind", string(conflict.SourceKind),
			"source_id", conflict.SourceID,
		)
	}
	return conflict, nil
}

// SubjectSchedule returns a subject's resolved commitments, for callers that
// render a schedule rather than check a booking.
func (c *Checker) SubjectSchedule(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) (Bindings, error) {
	return c.resolver.Resolve(ctx, scope, subjectID, role)
}

// ValidateTemplate checks a proposed weekly pattern against every subject it
// would bind, collecting all conflicts rather than stopping at the first so
// staff see the full damage before saving.
func (c *Checker) ValidateTemplate(ctx context.Context, scope models.Scope, v TemplateValidation) ([]models.SubjectConflict, error) {
	req := BookingRequest{
		Weekdays:          v.Weekdays,
		StartTime:         v.StartTime,
		EndTime:           v.EndTime,
		ExcludeTemplateID: v.ExcludeTemplateID,
	}

	var conflicts []models.SubjectConflict

	if v.GroupID != nil {
		athletes, err := c.resolver.subjects.AthletesInGroup(ctx, scope, *v.GroupID)
		if err != nil {
			return nil, fmt.Errorf("listing group athletes: %w", err)
		}
		for _, athleteID := range athletes {
			conflict, err := c.checkSubject(ctx, scope, athleteID, models.RoleAthlete, req)
			if err != nil {
				return nil, fmt.Errorf("validating against athlete %s: %w", athleteID, err)
			}
			if conflict != nil {
				conflicts = append(conflicts, models.SubjectConflict{
					SubjectID: athleteID,
					Role:      models.RoleAthlete,
					Conflict:  *conflict,
				})
			}
		}
	}

	if v.CoachID != nil {
		conflict, err := c.checkSubject(ctx, scope, *v.CoachID, models.RoleCoach, req)
		if err != nil {
			return nil, fmt.Errorf("validating against coach %s: %w", *v.CoachID, err)
		}
		if conflict != nil {
			conflicts = append(conflicts, models.SubjectConflict{
				SubjectID: *v.CoachID,
				Role:      models.RoleCoach,
				Conflict:  *conflict,
			})
		}
	}

	return conflicts, nil
}
