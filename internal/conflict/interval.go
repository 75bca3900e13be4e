// Package conflict implements the schedule conflict detection engine: pure
// interval algebra, per-subject resolution of existing commitments, and the
// evaluator that decides whether a candidate time block double-books someone.
package conflict

import (
	"time"

	"github.com/meltforce/slotcheck/internal/models"
)

// Intervals are half-open: [start, end). Two intervals overlap iff
// s1 < e2 && e1 > s2, so a class ending at 18:00 never conflicts with one
// starting at 18:00 — back-to-back bookings are legitimate.

// TimeOfDayOverlaps reports whether two wall-clock intervals overlap,
// compared as minutes since midnight. A nil boundary means the schedule is
// flexible or malformed; either way it cannot conflict.
func TimeOfDayOverlaps(s1, e1, s2, e2 *models.TimeOfDay) bool {
	if s1 == nil || e1 == nil || s2 == nil || e2 == nil {
		return false
	}
	return s1.Minutes() < e2.Minutes() && e1.Minutes() > s2.Minutes()
}

// InstantOverlaps reports whether two datetime intervals overlap. Zero
// instants are treated as absent boundaries and never conflict.
func InstantOverlaps(s1, e1, s2, e2 time.Time) bool {
	if s1.IsZero() || e1.IsZero() || s2.IsZero() || e2.IsZero() {
		return false
	}
	return s1.Before(e2) && e1.After(s2)
}
