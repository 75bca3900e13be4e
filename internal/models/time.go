package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date. Recurring templates use it
// for their weekly start/end times; it carries no timezone and is interpreted
// in the academy's local civil time by convention of the caller.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour). "HH:MM:SS" is accepted and the
// seconds discarded, since roster exports commonly include them.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return TimeOfDay{}, fmt.Errorf("parsing time of day %q: %w", s, err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Minutes() < u.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalJSON serializes as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM" or "HH:MM:SS".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a civil calendar date with no time or timezone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the civil date of an instant in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Weekday returns the day of week (Sunday = 0, matching time.Weekday).
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// At combines the date with a wall-clock time into an instant in loc.
// Callers that only compare same-day intervals can pass any fixed location;
// the overlap outcome does not depend on it.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON serializes as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekdaySet is a set of weekdays stored as a bitmask (bit 0 = Sunday).
// An empty set on a template means "no fixed day": the template is flexible
// and can never produce a time-of-day conflict on its own.
type WeekdaySet uint8

// Weekdays builds a set from the given days.
func Weekdays(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Add returns the set with d included.
func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether the set contains no days.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Intersects reports whether the two sets share at least one day.
func (s WeekdaySet) Intersects(o WeekdaySet) bool {
	return s&o != 0
}

// Days returns the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// MarshalJSON serializes as a sorted array of weekday numbers (0 = Sunday).
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	nums := make([]int, 0, 7)
	for _, d := range s.Days() {
		nums = append(nums, int(d))
	}
	return json.Marshal(nums)
}

// UnmarshalJSON accepts an array of weekday numbers 0–6.
func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	var set WeekdaySet
	for _, n := range nums {
		if n < 0 || n > 6 {
			return fmt.Errorf("weekday %d out of range", n)
		}
		set = set.Add(time.Weekday(n))
	}
	*s = set
	return nil
}
