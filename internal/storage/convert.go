package storage

import (
	"github.com/meltforce/slotcheck/internal/models"
)

// Times are stored as minutes since midnight (SMALLINT, nullable). The
// conversions below keep null round-tripping to a nil TimeOfDay.

func minutesToTimeOfDay(min *int16) *models.TimeOfDay {
	if min == nil {
		return nil
	}
	return &models.TimeOfDay{Hour: int(*min) / 60, Minute: int(*min) % 60}
}

func timeOfDayToMinutes(t *models.TimeOfDay) *int16 {
	if t == nil {
		return nil
	}
	m := int16(t.Minutes())
	return &m
}
