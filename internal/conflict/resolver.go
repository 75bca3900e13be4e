package conflict

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// SubjectStore resolves subject records: an athlete's current group and a
// group's member athletes.
type SubjectStore interface {
	// AthleteGroup returns the athlete's current group id. ok is false when
	// the athlete has no group or does not exist — a nonexistent subject has
	// no commitments and is not an error here; verifying subject existence
	// is the caller's job.
	AthleteGroup(ctx context.Context, scope models.Scope, athleteID uuid.UUID) (groupID uuid.UUID, ok bool, err error)
	AthletesInGroup(ctx context.Context, scope models.Scope, groupID uuid.UUID) ([]uuid.UUID, error)
}

// BindingStore resolves template bindings along the three association paths:
// group membership, direct enrollment, and coach assignment.
type BindingStore interface {
	TemplatesForGroup(ctx context.Context, scope models.Scope, groupID uuid.UUID) ([]models.RecurringTemplate, error)
	TemplatesForAthlete(ctx context.Context, scope models.Scope, athleteID uuid.UUID) ([]models.RecurringTemplate, error)
	TemplatesForCoach(ctx context.Context, scope models.Scope, coachID uuid.UUID) ([]models.RecurringTemplate, error)
}

// SessionStore resolves concrete sessions: rows generated from templates
// (possibly with edited times) and ad-hoc bookings linked to a subject.
type SessionStore interface {
	SessionsForTemplates(ctx context.Context, scope models.Scope, templateIDs []uuid.UUID) ([]models.ScheduledSession, error)
	SessionsForSubject(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) ([]models.ScheduledSession, error)
}

// Bindings is everything a subject is already committed to: the recurring
// templates bound to them and the concrete sessions those templates or
// ad-hoc bookings put on the calendar.
type Bindings struct {
	Templates []models.RecurringTemplate `json:"templates"`
	Sessions  []models.ScheduledSession  `json:"sessions"`
}

// Resolver produces a subject's Bindings from the backing stores. It is a
// request-scoped query function: bindings mutate at any time, so every check
// resolves fresh and nothing is cached across calls.
type Resolver struct {
	subjects SubjectStore
	bindings BindingStore
	sessions SessionStore
	log      *slog.Logger
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(subjects SubjectStore, bindings BindingStore, sessions SessionStore, log *slog.Logger) *Resolver {
	return &Resolver{subjects: subjects, bindings: bindings, sessions: sessions, log: log}
}

// Resolve returns the subject's current commitments. Store failures are
// returned, never downgraded to empty bindings: a check that could not see
// the data must not approve the booking.
//
// The result is the complete set: a record under edit is NOT removed here.
// Self-exclusion is a comparison-time concern handled by the Evaluator,
// which must still see the excluded session to know its parent template is
// superseded on that date, and must still see the excluded template's
// generated sessions, which remain real commitments.
func (r *Resolver) Resolve(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) (Bindings, error) {
	templates, err := r.resolveTemplates(ctx, scope, subjectID, role)
	if err != nil {
		return Bindings{}, err
	}

	templateIDs := make([]uuid.UUID, 0, len(templates))
	for _, t := range templates {
		templateIDs = append(templateIDs, t.ID)
	}

	sessions, err := r.resolveSessions(ctx, scope, subjectID, role, templateIDs)
	if err != nil {
		return Bindings{}, err
	}

	filtered := sessions[:0]
	for _, s := range sessions {
		if s.Status == models.SessionCancelled {
			continue
		}
		if (s.StartTime == nil) != (s.EndTime == nil) {
			// Half-set time pair: skipped by the predicates, surfaced here
			// as a data-quality signal.
			r.log.Warn("session has half-set time pair, skipping in conflict checks",
				"session_id", s.ID, "date", s.Date.String())
		}
		filtered = append(filtered, s)
	}

	return Bindings{Templates: templates, Sessions: filtered}, nil
}

// resolveTemplates gathers the subject's templates along every binding path,
// de-duplicated by template id.
func (r *Resolver) resolveTemplates(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) ([]models.RecurringTemplate, error) {
	switch role {
	case models.RoleAthlete:
		var templates []models.RecurringTemplate
		seen := map[uuid.UUID]bool{}

		groupID, ok, err := r.subjects.AthleteGroup(ctx, scope, subjectID)
		if err != nil {
			return nil, fmt.Errorf("resolving athlete group: %w", err)
		}
		if ok {
			groupTemplates, err := r.bindings.TemplatesForGroup(ctx, scope, groupID)
			if err != nil {
				return nil, fmt.Errorf("resolving group templates: %w", err)
			}
			for _, t := range groupTemplates {
				if !seen[t.ID] {
					seen[t.ID] = true
					templates = append(templates, t)
				}
			}
		}

		// Direct enrollments (extra individual classes) are independent of
		// group membership.
		direct, err := r.bindings.TemplatesForAthlete(ctx, scope, subjectID)
		if err != nil {
			return nil, fmt.Errorf("resolving athlete enrollments: %w", err)
		}
		for _, t := range direct {
			if !seen[t.ID] {
				seen[t.ID] = true
				templates = append(templates, t)
			}
		}
		return templates, nil

	case models.RoleCoach:
		templates, err := r.bindings.TemplatesForCoach(ctx, scope, subjectID)
		if err != nil {
			return nil, fmt.Errorf("resolving coach assignments: %w", err)
		}
		return templates, nil

	default:
		return nil, fmt.Errorf("unknown subject role %q", role)
	}
}

// resolveSessions gathers sessions generated from the subject's templates
// plus ad-hoc sessions linked directly to the subject, de-duplicated by id.
func (r *Resolver) resolveSessions(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole, templateIDs []uuid.UUID) ([]models.ScheduledSession, error) {
	var sessions []models.ScheduledSession
	seen := map[uuid.UUID]bool{}

	if len(templateIDs) > 0 {
		fromTemplates, err := r.sessions.SessionsForTemplates(ctx, scope, templateIDs)
		if err != nil {
			return nil, fmt.Errorf("resolving template sessions: %w", err)
		}
		for _, s := range fromTemplates {
			if !seen[s.ID] {
				seen[s.ID] = true
				sessions = append(sessions, s)
			}
		}
	}

	adHoc, err := r.sessions.SessionsForSubject(ctx, scope, subjectID, role)
	if err != nil {
		return nil, fmt.Errorf("resolving ad-hoc sessions: %w", err)
	}
	for _, s := range adHoc {
		if !seen[s.ID] {
			seen[s.ID] = true
			sessions = append(sessions, s)
		}
	}

	return sessions, nil
}
