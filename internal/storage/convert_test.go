package storage

import (
	"testing"

	"github.com/meltforce/slotcheck/internal/models"
)

// TestMinutesRoundTrip verifies the minutes-since-midnight column encoding
// round-trips through TimeOfDay, including null.
func TestMinutesRoundTrip(t *testing.T) {
	tests := []struct {
		min  int16
		want models.TimeOfDay
	}{
		{0, models.TimeOfDay{Hour: 0, Minute: 0}},
		{1110, models.TimeOfDay{Hour: 18, Minute: 30}},
		{1439, models.TimeOfDay{Hour: 23, Minute: 59}},
	}

	for _, tt := range tests {
		min := tt.min
		got := minutesToTimeOfDay(&min)
		if got == nil || *got != tt.want {
			t.Errorf("minutesToTimeOfDay(%d) = %v, want %v", tt.min, got, tt.want)
		}
		back := timeOfDayToMinutes(got)
		if back == nil || *back != tt.min {
			t.Errorf("timeOfDayToMinutes(%v) = %v, want %d", got, back, tt.min)
		}
	}

	if minutesToTimeOfDay(nil) != nil {
		t.Error("nil minutes should map to nil TimeOfDay")
	}
	if timeOfDayToMinutes(nil) != nil {
		t.Error("nil TimeOfDay should map to nil minutes")
	}
}
