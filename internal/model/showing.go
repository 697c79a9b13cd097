package model

import (
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

// ShowingTemplate books a film into a hall for every day of the closed
// range [DateStarts, DateEnds].  Dates are calendar dates held as UTC
// midnight.
//
// Fields:
//  ID         – primary key identifier.
//  FilmID     – film being shown.
//  HallID     – hall hosting the film.
//  DateStarts – first day of the run.
//  DateEnds   – last day of the run (inclusive).
//  AdminID    – user who last changed the template.
type ShowingTemplate struct {
	ID         uint64    `json:"id"`          // showing_templates.id
	FilmID     uint64    `json:"film_id"`     // showing_templates.film_id
	HallID     uint64    `json:"hall_id"`     // showing_templates.hall_id
	DateStarts time.Time `json:"date_starts"` // showing_templates.date_starts
	DateEnds   time.Time `json:"date_ends"`   // showing_templates.date_ends
	AdminID    uint64    `json:"admin_id"`    // showing_templates.admin_id
	CreatedAt  time.Time `json:"created_at"`  // showing_templates.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // showing_templates.updated_at
}

// Showing is one daily screening of a template.  TimeEnds and TimeHallFree
// are derived from TimeStarts, the advertisement block, the film duration
// and the cleaning block; both may be earlier than TimeStarts when the
// screening runs past midnight.
//
// Fields:
//  ID               – primary key identifier.
//  TemplateID       – owning template.
//  TimeStarts       – clock time the screening starts.
//  TimeEnds         – TimeStarts + AdsDuration + film duration.
//  TimeHallFree     – TimeEnds + CleaningDuration.
//  AdsDuration      – advertisement block before the film.
//  CleaningDuration – cleaning block after the film.
//  Description      – optional text shown to customers.
//  IsActive         – false until activated.
type Showing struct {
	ID               uint64          `json:"id"`                // showings.id
	TemplateID       uint64          `json:"template_id"`       // showings.template_id
	TimeStarts       clock.TimeOfDay `json:"time_starts"`       // showings.time_starts
	TimeEnds         clock.TimeOfDay `json:"time_ends"`         // showings.time_ends
	TimeHallFree     clock.TimeOfDay `json:"time_hall_free"`    // showings.time_hall_free
	AdsDuration      clock.Duration  `json:"ads_duration"`      // showings.ads_duration
	CleaningDuration clock.Duration  `json:"cleaning_duration"` // showings.cleaning_duration
	Description      string          `json:"description"`       // showings.description
	IsActive         bool            `json:"is_active"`         // showings.is_active
	AdminID          uint64          `json:"admin_id"`          // showings.admin_id
	CreatedAt        time.Time       `json:"created_at"`        // showings.created_at
	UpdatedAt        time.Time       `json:"updated_at"`        // showings.updated_at
}

// ShowingDetails is a showing joined with its template, film and hall.
// It is the unit the scheduler, activation guard and basket work on.
type ShowingDetails struct {
	Showing
	HallID     uint64    `json:"hall_id"`
	HallName   string    `json:"hall_name"`
	HallActive bool      `json:"hall_active"`
	FilmID     uint64    `json:"film_id"`
	FilmTitle  string    `json:"film_title"`
	FilmActive bool      `json:"film_active"`
	DateStarts time.Time `json:"date_starts"`
	DateEnds   time.Time `json:"date_ends"`
}

// InRun reports whether the showing can still be sold for the given date:
// it is active, its template has not ended and, when date is today, the
// screening has not started yet.
func (d ShowingDetails) InRun(today time.Time, now clock.TimeOfDay, date time.Time) bool {
	if !d.IsActive || d.DateEnds.Before(today) {
		return false
	}
	if date.Equal(today) && d.TimeStarts < now {
		return false
	}
	return true
}
