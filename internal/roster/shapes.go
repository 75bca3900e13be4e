// Package roster imports academy roster exports into the database.
//
// An export directory holds one JSON file per entity kind, produced by the
// upstream management app. Files are imported in dependency order so foreign
// keys resolve: groups, athletes, coaches, templates, template links,
// enrollments, assignments, sessions.
package roster

import (
	"github.com/google/uuid"

	"github.com/meltforce/slotcheck/internal/models"
)

type groupRecord struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type athleteRecord struct {
	ID       uuid.UUID  `json:"id"`
	FullName string     `json:"full_name"`
	GroupID  *uuid.UUID `json:"group_id,omitempty"`
}

type coachRecord struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

type templateRecord struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Weekdays  models.WeekdaySet `json:"weekdays"`
	StartTime *models.TimeOfDay `json:"start_time,omitempty"`
	EndTime   *models.TimeOfDay `json:"end_time,omitempty"`
	GroupIDs  []uuid.UUID       `json:"group_ids,omitempty"`
}

type enrollmentRecord struct {
	AthleteID  uuid.UUID `json:"athlete_id"`
	TemplateID uuid.UUID `json:"template_id"`
}

type assignmentRecord struct {
	CoachID    uuid.UUID `json:"coach_id"`
	TemplateID uuid.UUID `json:"template_id"`
	Role       string    `json:"role,omitempty"`
}

type sessionRecord struct {
	ID         uuid.UUID            `json:"id"`
	TemplateID *uuid.UUID           `json:"template_id,omitempty"`
	Name       string               `json:"name"`
	Date       models.Date          `json:"date"`
	StartTime  *models.TimeOfDay    `json:"start_time,omitempty"`
	EndTime    *models.TimeOfDay    `json:"end_time,omitempty"`
	Status     models.SessionStatus `json:"status,omitempty"`
	AthleteID  *uuid.UUID           `json:"athlete_id,omitempty"`
	CoachID    *uuid.UUID           `json:"coach_id,omitempty"`
}
