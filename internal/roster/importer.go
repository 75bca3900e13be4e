package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
	"github.com/meltforce/slotcheck/internal/storage"
)

// Store is the write surface the importer needs. *storage.DB satisfies it.
type Store interface {
	InsertGroup(ctx context.Context, scope models.Scope, id uuid.UUID, name string) (bool, error)
	InsertAthlete(ctx context.Context, scope models.Scope, id uuid.UUID, groupID *uuid.UUID, fullName string) (bool, error)
	InsertCoach(ctx context.Context, scope models.Scope, id uuid.UUID, fullName string) (bool, error)
	InsertTemplate(ctx context.Context, scope models.Scope, t models.RecurringTemplate) (bool, error)
	LinkTemplateGroup(ctx context.Context, templateID, groupID uuid.UUID) (bool, error)
	InsertEnrollment(ctx context.Context, athleteID, templateID uuid.UUID) (bool, error)
	InsertAssignment(ctx context.Context, coachID, templateID uuid.UUID, role string) (bool, error)
	InsertSession(ctx context.Context, scope models.Scope, s models.ScheduledSession, athleteID, coachID *uuid.UUID) (bool, error)
}

// Compile-time check: the real database satisfies Store.
var _ Store = (*storage.DB)(nil)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int

	GroupsInserted      int
	AthletesInserted    int
	CoachesInserted     int
	TemplatesInserted   int
	EnrollmentsInserted int
	AssignmentsInserted int
	SessionsInserted    int
	Duplicates          int
}

// Importer reads a roster export directory and inserts its entities into the
// database. Inserts use ON CONFLICT DO NOTHING, so re-importing the same
// export is safe.
type Importer struct {
	store  Store
	state  *StateDB
	scope  models.Scope
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates an Importer. state may be nil, in which case every file is
// processed on every run.
func New(store Store, state *StateDB, scope models.Scope, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, state: state, scope: scope, log: log, dryRun: dryRun}
}

// importOrder lists export files in dependency order so foreign keys resolve.
var importOrder = []string{
	"groups.json",
	"athletes.json",
	"coaches.json",
	"templates.json",
	"enrollments.json",
	"assignments.json",
	"sessions.json",
}

// Import processes all known export files under dir. Missing files are
// skipped: partial exports (e.g. sessions only) are normal.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	for _, name := range importOrder {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		skip, size, hash, err := imp.alreadyImported(path)
		if err != nil {
			return &imp.stats, err
		}
		if skip {
			imp.log.Info("skipping unchanged file", "file", name)
			imp.stats.FilesSkipped++
			continue
		}

		if err := imp.importFile(ctx, path, name); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", name, err)
		}
		imp.stats.FilesProcessed++

		if imp.state != nil && !imp.dryRun {
			if err := imp.state.Record(imp.scope, name, size, hash); err != nil {
				return &imp.stats, fmt.Errorf("recording import state for %s: %w", name, err)
			}
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) alreadyImported(path string) (skip bool, size int64, hash string, err error) {
	if imp.state == nil {
		return false, 0, "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err = HashFile(path)
	if err != nil {
		return false, 0, "", fmt.Errorf("hashing %s: %w", path, err)
	}
	skip, err = imp.state.Unchanged(imp.scope, filepath.Base(path), info.Size(), hash)
	if err != nil {
		return false, 0, "", fmt.Errorf("checking import state for %s: %w", path, err)
	}
	return skip, info.Size(), hash, nil
}

func (imp *Importer) importFile(ctx context.Context, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch name {
	case "groups.json":
		return importRecords(ctx, imp, data, imp.importGroup)
	case "athletes.json":
		return importRecords(ctx, imp, data, imp.importAthlete)
	case "coaches.json":
		return importRecords(ctx, imp, data, imp.importCoach)
	case "templates.json":
		return importRecords(ctx, imp, data, imp.importTemplate)
	case "enrollments.json":
		return importRecords(ctx, imp, data, imp.importEnrollment)
	case "assignments.json":
		return importRecords(ctx, imp, data, imp.importAssignment)
	case "sessions.json":
		return importRecords(ctx, imp, data, imp.importSession)
	}
	return fmt.Errorf("unknown export file %s", name)
}

func importRecords[T any](ctx context.Context, imp *Importer, data []byte, insert func(context.Context, T) error) error {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	for i, rec := range records {
		if err := insert(ctx, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func (imp *Importer) importGroup(ctx context.Context, rec groupRecord) error {
	if imp.dryRun {
		imp.stats.GroupsInserted++
		return nil
	}
	inserted, err := imp.store.InsertGroup(ctx, imp.scope, rec.ID, rec.Name)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.GroupsInserted)
	return nil
}

func (imp *Importer) importAthlete(ctx context.Context, rec athleteRecord) error {
	if imp.dryRun {
		imp.stats.AthletesInserted++
		return nil
	}
	inserted, err := imp.store.InsertAthlete(ctx, imp.scope, rec.ID, rec.GroupID, rec.FullName)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.AthletesInserted)
	return nil
}

func (imp *Importer) importCoach(ctx context.Context, rec coachRecord) error {
	if imp.dryRun {
		imp.stats.CoachesInserted++
		return nil
	}
	inserted, err := imp.store.InsertCoach(ctx, imp.scope, rec.ID, rec.FullName)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.CoachesInserted)
	return nil
}

func (imp *Importer) importTemplate(ctx context.Context, rec templateRecord) error {
	t := models.RecurringTemplate{
		ID:        rec.ID,
		Name:      rec.Name,
		Weekdays:  rec.Weekdays,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %s: %w", rec.ID, err)
	}
	if imp.dryRun {
		imp.stats.TemplatesInserted++
		return nil
	}
	inserted, err := imp.store.InsertTemplate(ctx, imp.scope, t)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.TemplatesInserted)

	for _, groupID := range rec.GroupIDs {
		if _, err := imp.store.LinkTemplateGroup(ctx, rec.ID, groupID); err != nil {
			return fmt.Errorf("linking group %s: %w", groupID, err)
		}
	}
	return nil
}

func (imp *Importer) importEnrollment(ctx context.Context, rec enrollmentRecord) error {
	if imp.dryRun {
		imp.stats.EnrollmentsInserted++
		return nil
	}
	inserted, err := imp.store.InsertEnrollment(ctx, rec.AthleteID, rec.TemplateID)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.EnrollmentsInserted)
	return nil
}

func (imp *Importer) importAssignment(ctx context.Context, rec assignmentRecord) error {
	role := rec.Role
	if role == "" {
		role = "head"
	}
	if imp.dryRun {
		imp.stats.AssignmentsInserted++
		return nil
	}
	inserted, err := imp.store.InsertAssignment(ctx, rec.CoachID, rec.TemplateID, role)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.AssignmentsInserted)
	return nil
}

func (imp *Importer) importSession(ctx context.Context, rec sessionRecord) error {
	status := rec.Status
	if status == "" {
		status = models.SessionScheduled
	}
	s := models.ScheduledSession{
		ID:         rec.ID,
		TemplateID: rec.TemplateID,
		Name:       rec.Name,
		Date:       rec.Date,
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
		Status:     status,
	}
	if s.Date.IsZero() {
		return fmt.Errorf("session %s: date is required", rec.ID)
	}
	if imp.dryRun {
		imp.stats.SessionsInserted++
		return nil
	}
	inserted, err := imp.store.InsertSession(ctx, imp.scope, s, rec.AthleteID, rec.CoachID)
	if err != nil {
		return err
	}
	imp.count(inserted, &imp.stats.SessionsInserted)
	return nil
}

func (imp *Importer) count(inserted bool, field *int) {
	if inserted {
		*field++
	} else {
		imp.stats.Duplicates++
	}
}
