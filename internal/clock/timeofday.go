// Package clock holds the wall-clock arithmetic used by scheduling. A
// TimeOfDay is a clock reading without a date; a Duration is an hour/minute
// span without a date. Adding durations to a time of day wraps past midnight.
package clock

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a clock time stored as minutes since midnight (0..1439).
type TimeOfDay int

// Duration is a non-negative span expressed in hours and minutes. Minutes
// may exceed 59; Add carries them into hours.
type Duration struct {
	Hours   int
	Minutes int
}

// At builds a TimeOfDay from an hour and minute, wrapping out-of-range values.
func At(hour, minute int) TimeOfDay {
	return normalize(hour*60 + minute)
}

// InMinutes returns the duration as a whole number of minutes.
func (d Duration) InMinutes() int { return d.Hours*60 + d.Minutes }

// Add returns t advanced by every duration in ds, wrapping modulo 24 hours.
// It is the only place wrap-around is computed.
func Add(t TimeOfDay, ds ...Duration) TimeOfDay {
	total := int(t)
	for _, d := range ds {
		total += d.InMinutes()
	}
	return normalize(total)
}

func normalize(m int) TimeOfDay {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return TimeOfDay(m)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats t as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// String formats d as HH:MM after carrying minutes into hours.
func (d Duration) String() string {
	m := d.InMinutes()
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseTime parses "HH:MM" or "HH:MM:SS" into a TimeOfDay. Seconds are
// dropped.
func ParseTime(s string) (TimeOfDay, error) {
	h, m, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	if h > 23 {
		return 0, fmt.Errorf("clock: hour out of range in %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// ParseDuration parses "HH:MM" or "HH:MM:SS" into a Duration.
func ParseDuration(s string) (Duration, error) {
	h, m, err := parseClock(s)
	if err != nil {
		return Duration{}, err
	}
	return Duration{Hours: h, Minutes: m}, nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("clock: invalid value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("clock: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("clock: invalid minute in %q", s)
	}
	return h, m, nil
}

// Scan reads a MySQL TIME column.
func (t *TimeOfDay) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value writes t as a MySQL TIME literal.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String() + ":00", nil
}

// Scan reads a MySQL TIME column.
func (d *Duration) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value writes d as a MySQL TIME literal.
func (d Duration) Value() (driver.Value, error) {
	return d.String() + ":00", nil
}

func scanText(src any) (string, error) {
	switch v := src.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("clock: cannot scan %T", src)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
