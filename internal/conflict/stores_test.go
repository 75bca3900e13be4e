package conflict

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

// fakeStore is an in-memory implementation of all three resolver stores,
// keyed the same way the SQL schema is.
type fakeStore struct {
	groupOf          map[uuid.UUID]uuid.UUID
	groupMembers     map[uuid.UUID][]uuid.UUID
	groupTemplates   map[uuid.UUID][]models.RecurringTemplate
	athleteTemplates map[uuid.UUID][]models.RecurringTemplate
	coachTemplates   map[uuid.UUID][]models.RecurringTemplate
	templateSessions map[uuid.UUID][]models.ScheduledSession
	subjectSessions  map[uuid.UUID][]models.ScheduledSession

	err error // when set, every method fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groupOf:          map[uuid.UUID]uuid.UUID{},
		groupMembers:     map[uuid.UUID][]uuid.UUID{},
		groupTemplates:   map[uuid.UUID][]models.RecurringTemplate{},
		athleteTemplates: map[uuid.UUID][]models.RecurringTemplate{},
		coachTemplates:   map[uuid.UUID][]models.RecurringTemplate{},
		templateSessions: map[uuid.UUID][]models.ScheduledSession{},
		subjectSessions:  map[uuid.UUID][]models.ScheduledSession{},
	}
}

func (f *fakeStore) AthleteGroup(_ context.Context, _ models.Scope, athleteID uuid.UUID) (uuid.UUID, bool, error) {
	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	g, ok := f.groupOf[athleteID]
	return g, ok, nil
}

func (f *fakeStore) AthletesInGroup(_ context.Context, _ models.Scope, groupID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.groupMembers[groupID], nil
}

func (f *fakeStore) TemplatesForGroup(_ context.Context, _ models.Scope, groupID uuid.UUID) ([]models.RecurringTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.groupTemplates[groupID], nil
}

func (f *fakeStore) TemplatesForAthlete(_ context.Context, _ models.Scope, athleteID uuid.UUID) ([]models.RecurringTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.athleteTemplates[athleteID], nil
}

func (f *fakeStore) TemplatesForCoach(_ context.Context, _ models.Scope, coachID uuid.UUID) ([]models.RecurringTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coachTemplates[coachID], nil
}

func (f *fakeStore) SessionsForTemplates(_ context.Context, _ models.Scope, templateIDs []uuid.UUID) ([]models.ScheduledSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ScheduledSession
	for _, id := range templateIDs {
		out = append(out, f.templateSessions[id]...)
	}
	return out, nil
}

func (f *fakeStore) SessionsForSubject(_ context.Context, _ models.Scope, subjectID uuid.UUID, _ models.SubjectRole) ([]models.ScheduledSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subjectSessions[subjectID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestChecker(f *fakeStore) *Checker {
	return NewChecker(NewResolver(f, f, f, testLogger()), SessionSupersedes, testLogger())
}

func tod(h, m int) *models.TimeOfDay {
	return &models.TimeOfDay{Hour: h, Minute: m}
}
