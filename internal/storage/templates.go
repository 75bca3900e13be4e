package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/slotcheck/internal/models"
)

const templateColumns = `id, name, weekdays, start_min, end_min`

func scanTemplates(rows pgx.Rows) ([]models.RecurringTemplate, error) {
	defer rows.Close()

	var templates []models.RecurringTemplate
	for rows.Next() {
		var (
			t        models.RecurringTemplate
			weekdays int16
			startMin *int16
			endMin   *int16
		)
		if err := rows.Scan(&t.ID, &t.Name, &weekdays, &startMin, &endMin); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		t.Weekdays = models.WeekdaySet(weekdays)
		t.StartTime = minutesToTimeOfDay(startMin)
		t.EndTime = minutesToTimeOfDay(endMin)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// TemplatesForGroup returns the templates linked to a group.
func (db *DB) TemplatesForGroup(ctx context.Context, scope models.Scope, groupID uuid.UUID) ([]models.RecurringTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumnsJoined("t")+`
		 FROM templates t
		 JOIN template_groups tg ON tg.template_id = t.id
		 WHERE tg.group_id = $1 AND t.tenant_id = $2 AND t.academy_id = $3`,
		groupID, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying group templates: %w", err)
	}
	return scanTemplates(rows)
}

// TemplatesForAthlete returns templates the athlete is directly enrolled in.
func (db *DB) TemplatesForAthlete(ctx context.Context, scope models.Scope, athleteID uuid.UUID) ([]models.RecurringTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumnsJoined("t")+`
		 FROM templates t
		 JOIN enrollments e ON e.template_id = t.id
		 WHERE e.athlete_id = $1 AND t.tenant_id = $2 AND t.academy_id = $3`,
		athleteID, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying athlete enrollments: %w", err)
	}
	return scanTemplates(rows)
}

// TemplatesForCoach returns templates the coach is assigned to teach, in
// any assignment role — head and assistant both count for conflicts.
func (db *DB) TemplatesForCoach(ctx context.Context, scope models.Scope, coachID uuid.UUID) ([]models.RecurringTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumnsJoined("t")+`
		 FROM templates t
		 JOIN assignments a ON a.template_id = t.id
		 WHERE a.coach_id = $1 AND t.tenant_id = $2 AND t.academy_id = $3`,
		coachID, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying coach assignments: %w", err)
	}
	return scanTemplates(rows)
}

// ListTemplates returns every template in the scope.
func (db *DB) ListTemplates(ctx context.Context, scope models.Scope) ([]models.RecurringTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumns+`
		 FROM templates
		 WHERE tenant_id = $1 AND academy_id = $2
		 ORDER BY name`,
		scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	return scanTemplates(rows)
}

// InsertTemplate inserts a template row. Returns true if inserted, false if duplicate.
func (db *DB) InsertTemplate(ctx context.Context, scope models.Scope, t models.RecurringTemplate) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("invalid template %s: %w", t.ID, err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO templates (id, tenant_id, academy_id, name, weekdays, start_min, end_min)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING`,
		t.ID, scope.TenantID, scope.AcademyID, t.Name, int16(t.Weekdays),
		timeOfDayToMinutes(t.StartTime), timeOfDayToMinutes(t.EndTime))
	if err != nil {
		return false, fmt.Errorf("inserting template: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LinkTemplateGroup binds a template to a group.
func (db *DB) LinkTemplateGroup(ctx context.Context, templateID, groupID uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO template_groups (template_id, group_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		templateID, groupID)
	if err != nil {
		return false, fmt.Errorf("linking template to group: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertEnrollment directly enrolls an athlete in a template.
func (db *DB) InsertEnrollment(ctx context.Context, athleteID, templateID uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO enrollments (athlete_id, template_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		athleteID, templateID)
	if err != nil {
		return false, fmt.Errorf("inserting enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertAssignment assigns a coach to a template.
func (db *DB) InsertAssignment(ctx context.Context, coachID, templateID uuid.UUID, role string) (bool, error) {
	if role == "" {
		role = "head"
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO assignments (coach_id, template_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		coachID, templateID, role)
	if err != nil {
		return false, fmt.Errorf("inserting assignment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// templateColumnsJoined prefixes each template column with a table alias.
func templateColumnsJoined(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".weekdays, " + alias + ".start_min, " + alias + ".end_min"
}
