package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// scenario builds the end-to-end fixture from the engine's acceptance
// checks: athlete A in group G bound to template T1 (Monday 17:00-19:00),
// coach C teaching template T2 (Monday 18:00-20:00) to a different group.
type scenario struct {
	store   *fakeStore
	athlete uuid.UUID
	coach   uuid.UUID
	t1, t2  models.RecurringTemplate
}

func newScenario() scenario {
	f := newFakeStore()
	athlete := uuid.New()
	coach := uuid.New()
	group := uuid.New()

	t1 := models.RecurringTemplate{ID: uuid.New(), Name: "U16 Squad", Weekdays: models.Weekdays(time.Monday), StartTime: tod(17, 0), EndTime: tod(19, 0)}
	t2 := models.RecurringTemplate{ID: uuid.New(), Name: "Senior Squad", Weekdays: models.Weekdays(time.Monday), StartTime: tod(18, 0), EndTime: tod(20, 0)}

	f.groupOf[athlete] = group
	f.groupMembers[group] = []uuid.UUID{athlete}
	f.groupTemplates[group] = []models.RecurringTemplate{t1}
	f.coachTemplates[coach] = []models.RecurringTemplate{t2}

	return scenario{store: f, athlete: athlete, coach: coach, t1: t1, t2: t2}
}

// TestCheckBookingEndToEndConflict verifies the canonical double-booking:
// an 18:30-19:30 extra class on a Monday hits the athlete's 17:00-19:00
// group template (18:30 < 19:00 and 19:30 > 18:00).
func TestCheckBookingEndToEndConflict(t *testing.T) {
	sc := newScenario()
	checker := newTestChecker(sc.store)

	got, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &sc.athlete,
		Date:      &monday,
		StartTime: tod(18, 30),
		EndTime:   tod(19, 30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AthleteConflict == nil {
		t.Fatal("expected an athlete conflict")
	}
	c := got.AthleteConflict
	if c.SourceKind != models.SourceTemplate || c.SourceID != sc.t1.ID {
		t.Errorf("conflict source = %s %s, want template %s", c.SourceKind, c.SourceID, sc.t1.ID)
	}
	if c.Start != (models.TimeOfDay{Hour: 17, Minute: 0}) || c.End != (models.TimeOfDay{Hour: 19, Minute: 0}) {
		t.Errorf("conflicting interval = %s-%s, want 17:00-19:00", c.Start, c.End)
	}
	if got.CoachConflict != nil {
		t.Errorf("coach conflict = %+v, want nil (no coach named)", got.CoachConflict)
	}
}

// TestCheckBookingEndToEndClear verifies the touching-boundary case: a
// 19:00-20:00 booking starts exactly when the athlete's template ends and
// must be clear.
func TestCheckBookingEndToEndClear(t *testing.T) {
	sc := newScenario()
	checker := newTestChecker(sc.store)

	got, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &sc.athlete,
		Date:      &monday,
		StartTime: tod(19, 0),
		EndTime:   tod(20, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasConflict() {
		t.Errorf("back-to-back booking reported conflict: %+v", got)
	}
}

// TestCheckBookingDualSubjectIndependence verifies both subjects are always
// evaluated and reported independently: here the athlete is clear but the
// coach is double-booked, and vice versa.
func TestCheckBookingDualSubjectIndependence(t *testing.T) {
	sc := newScenario()
	checker := newTestChecker(sc.store)

	// 19:00-20:00: clear for the athlete (T1 ends 19:00), hits the coach's
	// T2 (18:00-20:00).
	got, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &sc.athlete,
		CoachID:   &sc.coach,
		Date:      &monday,
		StartTime: tod(19, 0),
		EndTime:   tod(20, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AthleteConflict != nil {
		t.Errorf("athlete conflict = %+v, want nil", got.AthleteConflict)
	}
	if got.CoachConflict == nil {
		t.Fatal("expected a coach conflict")
	}
	if got.CoachConflict.SourceID != sc.t2.ID {
		t.Errorf("coach conflict source = %s, want %s", got.CoachConflict.SourceID, sc.t2.ID)
	}

	// 17:00-18:00: hits the athlete's T1, clear for the coach (T2 starts
	// 18:00).
	got, err = checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &sc.athlete,
		CoachID:   &sc.coach,
		Date:      &monday,
		StartTime: tod(17, 0),
		EndTime:   tod(18, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AthleteConflict == nil {
		t.Error("expected an athlete conflict")
	}
	if got.CoachConflict != nil {
		t.Errorf("coach conflict = %+v, want nil", got.CoachConflict)
	}
}

// TestCheckBookingSelfExclusionIdempotence verifies re-submitting an
// unmodified existing booking for edit, with its own id excluded, is clear.
func TestCheckBookingSelfExclusionIdempotence(t *testing.T) {
	f := newFakeStore()
	athlete := uuid.New()
	existing := models.ScheduledSession{
		ID: uuid.New(), Name: "Private lesson", Date: monday,
		StartTime: tod(18, 0), EndTime: tod(19, 0), Status: models.SessionScheduled,
	}
	f.subjectSessions[athlete] = []models.ScheduledSession{existing}

	checker := newTestChecker(f)

	// Without exclusion the booking collides with itself.
	got, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &athlete,
		Date:      &monday,
		StartTime: tod(18, 0),
		EndTime:   tod(19, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AthleteConflict == nil {
		t.Fatal("expected self-collision without exclusion")
	}

	got, err = checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID:        &athlete,
		Date:             &monday,
		StartTime:        tod(18, 0),
		EndTime:          tod(19, 0),
		ExcludeSessionID: &existing.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasConflict() {
		t.Errorf("self-excluded edit reported conflict: %+v", got)
	}
}

// TestCheckBookingGeneratedSessionEditIdempotence verifies re-submitting an
// unmodified template-generated session for edit is clear: excluding the
// session must not reinstate its parent template on that date, which would
// make the booking collide with itself through the template.
func TestCheckBookingGeneratedSessionEditIdempotence(t *testing.T) {
	sc := newScenario()
	generated := models.ScheduledSession{
		ID: uuid.New(), TemplateID: &sc.t1.ID, Name: "U16 Squad", Date: monday,
		StartTime: tod(17, 0), EndTime: tod(19, 0), Status: models.SessionScheduled,
	}
	sc.store.templateSessions[sc.t1.ID] = []models.ScheduledSession{generated}

	checker := newTestChecker(sc.store)

	got, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID:        &sc.athlete,
		Date:             &monday,
		StartTime:        tod(17, 0),
		EndTime:          tod(19, 0),
		ExcludeSessionID: &generated.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasConflict() {
		t.Errorf("self-excluded edit of generated session reported conflict: %+v", got.AthleteConflict)
	}

	// A genuinely different commitment on the same date still conflicts.
	other := models.ScheduledSession{
		ID: uuid.New(), Name: "Physio", Date: monday,
		StartTime: tod(18, 0), EndTime: tod(19, 30), Status: models.SessionScheduled,
	}
	sc.store.subjectSessions[sc.athlete] = []models.ScheduledSession{other}

	got, err = checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID:        &sc.athlete,
		Date:             &monday,
		StartTime:        tod(17, 0),
		EndTime:          tod(19, 0),
		ExcludeSessionID: &generated.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AthleteConflict == nil || got.AthleteConflict.SourceID != other.ID {
		t.Errorf("conflict = %+v, want session %s", got.AthleteConflict, other.ID)
	}
}

// TestValidateTemplateKeepsMovedSessions verifies that excluding the
// template under edit does not hide its independently rescheduled
// occurrences: a one-off moved session is still a real commitment the new
// pattern must clear.
func TestValidateTemplateKeepsMovedSessions(t *testing.T) {
	sc := newScenario()
	group := sc.store.groupOf[sc.athlete]

	// T1's Monday occurrence moved to Wednesday morning.
	moved := models.ScheduledSession{
		ID: uuid.New(), TemplateID: &sc.t1.ID, Name: "U16 Squad (moved)",
		Date:      models.Date{Year: 2026, Month: time.August, Day: 26},
		StartTime: tod(10, 0), EndTime: tod(12, 0), Status: models.SessionScheduled,
	}
	sc.store.templateSessions[sc.t1.ID] = []models.ScheduledSession{moved}

	checker := newTestChecker(sc.store)

	conflicts, err := checker.ValidateTemplate(context.Background(), testScope, TemplateValidation{
		GroupID:           &group,
		Weekdays:          models.Weekdays(time.Wednesday),
		StartTime:         tod(10, 0),
		EndTime:           tod(11, 0),
		ExcludeTemplateID: &sc.t1.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1 (the moved session)", len(conflicts))
	}
	c := conflicts[0]
	if c.Conflict.SourceKind != models.SourceSession || c.Conflict.SourceID != moved.ID {
		t.Errorf("conflict source = %s %s, want session %s", c.Conflict.SourceKind, c.Conflict.SourceID, moved.ID)
	}
}

// TestCheckBookingStoreFailure verifies an upstream query failure fails the
// whole check rather than passing as "no conflict".
func TestCheckBookingStoreFailure(t *testing.T) {
	sc := newScenario()
	sc.store.err = errors.New("timeout")
	checker := newTestChecker(sc.store)

	_, err := checker.CheckBooking(context.Background(), testScope, BookingRequest{
		AthleteID: &sc.athlete,
		Date:      &monday,
		StartTime: tod(10, 0),
		EndTime:   tod(11, 0),
	})
	if err == nil {
		t.Fatal("expected store failure to propagate")
	}
}

// TestValidateTemplateCollectsAllConflicts verifies the template-definition
// flow checks every subject the template would bind and reports all of them,
// not just the first.
func TestValidateTemplateCollectsAllConflicts(t *testing.T) {
	sc := newScenario()

	// A second athlete in the group with an individual enrollment that also
	// collides with the proposed window.
	other := uuid.New()
	sc.store.groupOf[other] = sc.store.groupOf[sc.athlete]
	group := sc.store.groupOf[sc.athlete]
	sc.store.groupMembers[group] = []uuid.UUID{sc.athlete, other}

	checker := newTestChecker(sc.store)

	// Proposed: Monday 18:00-19:00 for G, taught by C. Both athletes hit T1
	// (17:00-19:00) and the coach hits T2 (18:00-20:00).
	conflicts, err := checker.ValidateTemplate(context.Background(), testScope, TemplateValidation{
		GroupID:   &group,
		CoachID:   &sc.coach,
		Weekdays:  models.Weekdays(time.Monday),
		StartTime: tod(18, 0),
		EndTime:   tod(19, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 3 {
		t.Fatalf("conflicts = %d, want 3 (two athletes + coach)", len(conflicts))
	}

	roles := map[models.SubjectRole]int{}
	for _, c := range conflicts {
		roles[c.Role]++
	}
	if roles[models.RoleAthlete] != 2 || roles[models.RoleCoach] != 1 {
		t.Errorf("role counts = %v, want 2 athletes and 1 coach", roles)
	}
}

// TestValidateTemplateClearPattern verifies a pattern that avoids every
// existing commitment validates clean.
func TestValidateTemplateClearPattern(t *testing.T) {
	sc := newScenario()
	group := sc.store.groupOf[sc.athlete]
	checker := newTestChecker(sc.store)

	conflicts, err := checker.ValidateTemplate(context.Background(), testScope, TemplateValidation{
		GroupID:   &group,
		CoachID:   &sc.coach,
		Weekdays:  models.Weekdays(time.Wednesday),
		StartTime: tod(18, 0),
		EndTime:   tod(19, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %+v, want none", conflicts)
	}
}

// TestSubjectSchedule verifies the resolved-bindings view used by schedule
// rendering callers.
func TestSubjectSchedule(t *testing.T) {
	sc := newScenario()
	checker := newTestChecker(sc.store)

	b, err := checker.SubjectSchedule(context.Background(), testScope, sc.athlete, models.RoleAthlete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Templates) != 1 || b.Templates[0].ID != sc.t1.ID {
		t.Errorf("templates = %+v, want just T1", b.Templates)
	}
}
