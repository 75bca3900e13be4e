package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/slotcheck/internal/models"
)

const sessionColumns = `id, template_id, name, session_date, start_min, end_min, status`

func scanSessions(rows pgx.Rows) ([]models.ScheduledSession, error) {
	defer rows.Close()

	var sessions []models.ScheduledSession
	for rows.Next() {
		var (
			s        models.ScheduledSession
			date     time.Time
			startMin *int16
			endMin   *int16
			status   string
		)
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Name, &date, &startMin, &endMin, &status); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.Date = models.DateOf(date)
		s.StartTime = minutesToTimeOfDay(startMin)
		s.EndTime = minutesToTimeOfDay(endMin)
		s.Status = models.SessionStatus(status)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// SessionsForTemplates returns sessions generated from any of the given
// templates. Cancelled rows are returned too; the resolver filters them and
// logs data-quality issues in one place.
func (db *DB) SessionsForTemplates(ctx context.Context, scope models.Scope, templateIDs []uuid.UUID) ([]models.ScheduledSession, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE template_id = ANY($1) AND tenant_id = $2 AND academy_id = $3`,
		templateIDs, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying template sessions: %w", err)
	}
	return scanSessions(rows)
}

// SessionsForSubject returns ad-hoc sessions linked directly to the subject
// with no template (pure extra bookings).
func (db *DB) SessionsForSubject(ctx context.Context, scope models.Scope, subjectID uuid.UUID, role models.SubjectRole) ([]models.ScheduledSession, error) {
	subjectColumn := "athlete_id"
	if role == models.RoleCoach {
		subjectColumn = "coach_id"
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE template_id IS NULL AND `+subjectColumn+` = $1
		   AND tenant_id = $2 AND academy_id = $3`,
		subjectID, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying subject sessions: %w", err)
	}
	return scanSessions(rows)
}

// InsertSession inserts a session row. Returns true if inserted, false if duplicate.
func (db *DB) InsertSession(ctx context.Context, scope models.Scope, s models.ScheduledSession, athleteID, coachID *uuid.UUID) (bool, error) {
	date := s.Date.At(models.TimeOfDay{}, time.UTC)
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, tenant_id, academy_id, template_id, athlete_id, coach_id,
		 name, session_date, start_min, end_min, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING`,
		s.ID, scope.TenantID, scope.AcademyID, s.TemplateID, athleteID, coachID,
		s.Name, date, timeOfDayToMinutes(s.StartTime), timeOfDayToMinutes(s.EndTime), string(s.Status))
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
