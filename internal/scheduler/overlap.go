// Package scheduler decides whether showing templates and showings collide.
// It is pure: callers load the candidate set for a hall and pass it in.
package scheduler

import (
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// DateRange is a closed range of calendar dates.
type DateRange struct {
	Starts time.Time
	Ends   time.Time
}

// Overlaps reports whether r and o share at least one day.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Starts.After(o.Ends) && !o.Starts.After(r.Ends)
}

// Window is the daily occupation of a hall by one showing: from TimeStarts
// up to, but not including, HallFree.
type Window struct {
	Starts   clock.TimeOfDay
	HallFree clock.TimeOfDay
}

// CrossesMidnight reports whether the window wraps into the next day. A
// window freeing the hall exactly at 00:00 counts as crossing with an
// empty tail.
func (w Window) CrossesMidnight() bool {
	return w.HallFree <= w.Starts
}

// Overlaps reports whether two daily windows intersect once wrap-around is
// taken into account. A crossing window occupies [Starts, 24:00) and
// [00:00, HallFree).
func (w Window) Overlaps(o Window) bool {
	switch wc, oc := w.CrossesMidnight(), o.CrossesMidnight(); {
	case !wc && !oc:
		return w.Starts < o.HallFree && o.Starts < w.HallFree
	case !wc && oc:
		return w.Starts < o.HallFree || w.HallFree > o.Starts
	case wc && !oc:
		return o.Starts < w.HallFree || o.HallFree > w.Starts
	default:
		// both occupy the minutes straddling midnight
		return true
	}
}

// TemplateRange returns the run of a template as a DateRange.
func TemplateRange(t model.ShowingTemplate) DateRange {
	return DateRange{Starts: t.DateStarts, Ends: t.DateEnds}
}

// ShowingWindow returns the daily window of a showing.
func ShowingWindow(s model.Showing) Window {
	return Window{Starts: s.TimeStarts, HallFree: s.TimeHallFree}
}

// TemplateConflicts returns the templates in existing that run the same
// film in the same hall on at least one common day. A template never
// conflicts with itself, so updates can pass the stored set unfiltered.
func TemplateConflicts(candidate model.ShowingTemplate, existing []model.ShowingTemplate) []model.ShowingTemplate {
	var out []model.ShowingTemplate
	r := TemplateRange(candidate)
	for _, t := range existing {
		if candidate.ID != 0 && t.ID == candidate.ID {
			continue
		}
		if t.FilmID != candidate.FilmID || t.HallID != candidate.HallID {
			continue
		}
		if r.Overlaps(TemplateRange(t)) {
			out = append(out, t)
		}
	}
	return out
}

// ShowingConflicts returns the showings in existing that share the
// candidate's hall on a common day and whose windows intersect the
// candidate's window.
func ShowingConflicts(candidate model.ShowingDetails, existing []model.ShowingDetails) []model.ShowingDetails {
	var out []model.ShowingDetails
	r := DateRange{Starts: candidate.DateStarts, Ends: candidate.DateEnds}
	w := ShowingWindow(candidate.Showing)
	for _, s := range existing {
		if candidate.ID != 0 && s.ID == candidate.ID {
			continue
		}
		if s.HallID != candidate.HallID {
			continue
		}
		if !r.Overlaps(DateRange{Starts: s.DateStarts, Ends: s.DateEnds}) {
			continue
		}
		if w.Overlaps(ShowingWindow(s.Showing)) {
			out = append(out, s)
		}
	}
	return out
}
