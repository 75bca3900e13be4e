package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParseTimeOfDay verifies parsing of the "HH:MM" format used throughout
// the API, plus the "HH:MM:SS" form roster exports produce.
func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "17:00", want: TimeOfDay{17, 0}},
		{in: "09:05", want: TimeOfDay{9, 5}},
		{in: "15:30:00", want: TimeOfDay{15, 30}},
		{in: "00:00", want: TimeOfDay{0, 0}},
		{in: "23:59", want: TimeOfDay{23, 59}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeOfDay(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestTimeOfDayMinutes verifies the minutes-since-midnight conversion the
// overlap predicate is built on.
func TestTimeOfDayMinutes(t *testing.T) {
	if got := (TimeOfDay{18, 30}).Minutes(); got != 1110 {
		t.Errorf("Minutes() = %d, want 1110", got)
	}
	if got := (TimeOfDay{0, 0}).Minutes(); got != 0 {
		t.Errorf("Minutes() = %d, want 0", got)
	}
}

// TestTimeOfDayJSONRoundTrip verifies the "HH:MM" JSON representation.
func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(TimeOfDay{7, 5})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `"07:05"` {
		t.Errorf("marshal = %s, want \"07:05\"", data)
	}

	var got TimeOfDay
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got != (TimeOfDay{7, 5}) {
		t.Errorf("round trip = %v, want 07:05", got)
	}
}

// TestDateWeekday verifies weekday derivation, which gates every template
// comparison. 2026-08-24 is a Monday.
func TestDateWeekday(t *testing.T) {
	d, err := ParseDate("2026-08-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday() = %v, want Monday", d.Weekday())
	}
}

// TestDateAt verifies combining a date with a wall-clock time into an instant.
func TestDateAt(t *testing.T) {
	d := Date{2026, time.August, 24}
	got := d.At(TimeOfDay{17, 30}, time.UTC)
	want := time.Date(2026, 8, 24, 17, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At() = %v, want %v", got, want)
	}
}

// TestDateJSON verifies the "YYYY-MM-DD" JSON representation and that a
// malformed date is rejected rather than silently zeroed.
func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2026-02-07"`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d != (Date{2026, time.February, 7}) {
		t.Errorf("got %v, want 2026-02-07", d)
	}

	if err := json.Unmarshal([]byte(`"07/02/2026"`), &d); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

// TestWeekdaySet verifies membership, intersection and the empty-set
// semantics that flexible templates rely on.
func TestWeekdaySet(t *testing.T) {
	s := Weekdays(time.Monday, time.Wednesday)

	if !s.Has(time.Monday) || !s.Has(time.Wednesday) {
		t.Error("expected Monday and Wednesday in set")
	}
	if s.Has(time.Tuesday) {
		t.Error("Tuesday should not be in set")
	}
	if s.IsEmpty() {
		t.Error("set should not be empty")
	}
	if !s.Intersects(Weekdays(time.Wednesday, time.Friday)) {
		t.Error("expected intersection on Wednesday")
	}
	if s.Intersects(Weekdays(time.Sunday)) {
		t.Error("unexpected intersection with Sunday")
	}
	if !(WeekdaySet(0)).IsEmpty() {
		t.Error("zero set should be empty")
	}
}

// TestWeekdaySetJSON verifies the int-array JSON form (0 = Sunday) and
// rejection of out-of-range days.
func TestWeekdaySetJSON(t *testing.T) {
	var s WeekdaySet
	if err := json.Unmarshal([]byte(`[1, 3, 5]`), &s); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !s.Has(time.Monday) || !s.Has(time.Wednesday) || !s.Has(time.Friday) {
		t.Errorf("set = %v, want Mon/Wed/Fri", s.Days())
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `[1,3,5]` {
		t.Errorf("marshal = %s, want [1,3,5]", data)
	}

	if err := json.Unmarshal([]byte(`[7]`), &s); err == nil {
		t.Error("expected error for weekday 7")
	}
}
