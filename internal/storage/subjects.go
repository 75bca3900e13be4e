package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/slotcheck/internal/models"
)

// AthleteGroup returns the athlete's current group id. A missing athlete or
// an athlete with no group both report ok=false: a subject the store has
// never heard of has no commitments, and existence checks belong to the
// caller, not the engine.
func (db *DB) AthleteGroup(ctx context.Context, scope models.Scope, athleteID uuid.UUID) (uuid.UUID, bool, error) {
	var groupID *uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`SELECT group_id FROM athletes
		 WHERE id = $1 AND tenant_id = $2 AND academy_id = $3`,
		athleteID, scope.TenantID, scope.AcademyID).Scan(&groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("querying athlete group: %w", err)
	}
	if groupID == nil {
		return uuid.Nil, false, nil
	}
	return *groupID, true, nil
}

// AthletesInGroup returns the ids of all athletes currently in the group.
func (db *DB) AthletesInGroup(ctx context.Context, scope models.Scope, groupID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id FROM athletes
		 WHERE group_id = $1 AND tenant_id = $2 AND academy_id = $3
		 ORDER BY full_name`,
		groupID, scope.TenantID, scope.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("querying group athletes: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning athlete id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertGroup inserts a group row. Returns true if inserted, false if duplicate.
func (db *DB) InsertGroup(ctx context.Context, scope models.Scope, id uuid.UUID, name string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO groups (id, tenant_id, academy_id, name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		id, scope.TenantID, scope.AcademyID, name)
	if err != nil {
		return false, fmt.Errorf("inserting group: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertAthlete inserts an athlete row. Returns true if inserted, false if duplicate.
func (db *DB) InsertAthlete(ctx context.Context, scope models.Scope, id uuid.UUID, groupID *uuid.UUID, fullName string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO athletes (id, tenant_id, academy_id, group_id, full_name)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		id, scope.TenantID, scope.AcademyID, groupID, fullName)
	if err != nil {
		return false, fmt.Errorf("inserting athlete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertCoach inserts a coach row. Returns true if inserted, false if duplicate.
func (db *DB) InsertCoach(ctx context.Context, scope models.Scope, id uuid.UUID, fullName string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO coaches (id, tenant_id, academy_id, full_name)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		id, scope.TenantID, scope.AcademyID, fullName)
	if err != nil {
		return false, fmt.Errorf("inserting coach: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
