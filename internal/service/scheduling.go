package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
	"github.com/iliyamo/cinema-showtimes/internal/scheduler"
)

// Scheduling places showing templates and showings into halls. Every
// write re-reads the hall's schedule under the hall lock, so two
// overlapping requests cannot both be committed.
type Scheduling struct {
	films     FilmRepository
	halls     HallRepository
	templates TemplateRepository
	showings  ShowingRepository
	store     ScheduleStore
	settings
}

// NewScheduling builds a Scheduling service. All dependencies must be
// non-nil.
func NewScheduling(films FilmRepository, halls HallRepository, templates TemplateRepository, showings ShowingRepository, store ScheduleStore, opts ...Option) *Scheduling {
	if films == nil || halls == nil || templates == nil || showings == nil || store == nil {
		panic("nil repository passed to NewScheduling")
	}
	return &Scheduling{
		films:     films,
		halls:     halls,
		templates: templates,
		showings:  showings,
		store:     store,
		settings:  newSettings(opts),
	}
}

// ShowingInput carries the editable fields of a showing. Nil durations
// fall back to the configured defaults on create and to the stored
// values on update.
type ShowingInput struct {
	TimeStarts  clock.TimeOfDay
	Ads         *clock.Duration
	Cleaning    *clock.Duration
	Description *string
}

// ScheduleTemplate books the film into the hall from dateStarts to
// dateEnds inclusive. A nil dateEnds means the default span.
func (s *Scheduling) ScheduleTemplate(ctx context.Context, actor model.Actor, filmID, hallID uint64, dateStarts time.Time, dateEnds *time.Time) (*model.ShowingTemplate, error) {
	starts := clock.DateOf(dateStarts)
	ends := starts.AddDate(0, 0, s.templateSpan)
	if dateEnds != nil {
		ends = clock.DateOf(*dateEnds)
	}
	if ends.Before(starts) {
		return nil, invalid("date_ends", "must not be before date_starts")
	}
	if _, err := s.film(ctx, filmID); err != nil {
		return nil, err
	}
	if err := s.requireActiveHall(ctx, hallID); err != nil {
		return nil, err
	}

	t := &model.ShowingTemplate{
		FilmID:     filmID,
		HallID:     hallID,
		DateStarts: starts,
		DateEnds:   ends,
		AdminID:    actor.UserID,
	}
	err := s.store.InHallTx(ctx, hallID, func(tx repository.ScheduleTx) error {
		existing, err := tx.TemplatesForFilmInHall(ctx, filmID, hallID)
		if err != nil {
			return err
		}
		if conflicts := scheduler.TemplateConflicts(*t, existing); len(conflicts) > 0 {
			return &TemplateConflictError{Templates: conflicts}
		}
		return tx.CreateTemplate(ctx, t)
	})
	if err != nil {
		return nil, wrapTx("schedule template", err)
	}
	s.log.WithFields(logrus.Fields{
		"template_id": t.ID,
		"film_id":     filmID,
		"hall_id":     hallID,
		"admin_id":    actor.UserID,
	}).Info("showing template scheduled")
	return t, nil
}

// UpdateTemplate moves a template to a new date range. The new range must
// not overlap another template of the same film in the hall, must not
// make any of the template's showings collide with other showings in the
// hall, and must still cover every sold ticket that has not been used.
func (s *Scheduling) UpdateTemplate(ctx context.Context, actor model.Actor, templateID uint64, dateStarts, dateEnds time.Time) (*model.ShowingTemplate, error) {
	starts, ends := clock.DateOf(dateStarts), clock.DateOf(dateEnds)
	if ends.Before(starts) {
		return nil, invalid("date_ends", "must not be before date_starts")
	}
	current, err := s.templates.GetByID(ctx, templateID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return nil, notFound("showing template", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %d: %w", templateID, err)
	}

	updated := *current
	updated.DateStarts, updated.DateEnds = starts, ends
	updated.AdminID = actor.UserID
	today, now := s.today()

	err = s.store.InHallTx(ctx, current.HallID, func(tx repository.ScheduleTx) error {
		existing, err := tx.TemplatesForFilmInHall(ctx, current.FilmID, current.HallID)
		if err != nil {
			return err
		}
		if conflicts := scheduler.TemplateConflicts(updated, existing); len(conflicts) > 0 {
			return &TemplateConflictError{Templates: conflicts}
		}

		from, to := minDate(starts, current.DateStarts), maxDate(ends, current.DateEnds)
		hallShowings, err := tx.ShowingsInHall(ctx, current.HallID, from, to)
		if err != nil {
			return err
		}
		var own, others []model.ShowingDetails
		for _, sh := range hallShowings {
			if sh.TemplateID == templateID {
				own = append(own, sh)
			} else {
				others = append(others, sh)
			}
		}
		var conflicts []model.ShowingDetails
		for _, sh := range own {
			sh.DateStarts, sh.DateEnds = starts, ends
			conflicts = append(conflicts, scheduler.ShowingConflicts(sh, others)...)
		}
		if len(conflicts) > 0 {
			return &ShowingConflictError{Showings: conflicts}
		}

		slots, err := tx.SoldTicketSlots(ctx, templateID, today)
		if err != nil {
			return err
		}
		stranded := 0
		for _, slot := range slots {
			if !model.TicketActive(slot.Date, slot.TimeStarts, today, now) {
				continue
			}
			if slot.Date.Before(starts) || slot.Date.After(ends) {
				stranded++
			}
		}
		if stranded > 0 {
			return &StateError{Problems: []string{fmt.Sprintf("%d sold tickets fall outside the new date range", stranded)}}
		}
		return tx.UpdateTemplateDates(ctx, &updated)
	})
	if err != nil {
		return nil, wrapTx("update template", err)
	}
	s.log.WithFields(logrus.Fields{"template_id": templateID, "admin_id": actor.UserID}).Info("showing template updated")
	return &updated, nil
}

// ScheduleShowing adds a daily showing to a template. The showing starts
// inactive.
func (s *Scheduling) ScheduleShowing(ctx context.Context, actor model.Actor, templateID uint64, in ShowingInput) (*model.ShowingDetails, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return nil, notFound("showing template", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %d: %w", templateID, err)
	}
	film, err := s.film(ctx, t.FilmID)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveHall(ctx, t.HallID); err != nil {
		return nil, err
	}

	sh := model.Showing{
		TemplateID:       templateID,
		TimeStarts:       in.TimeStarts,
		AdsDuration:      s.ads,
		CleaningDuration: s.cleaning,
		AdminID:          actor.UserID,
	}
	if in.Ads != nil {
		sh.AdsDuration = *in.Ads
	}
	if in.Cleaning != nil {
		sh.CleaningDuration = *in.Cleaning
	}
	if in.Description != nil {
		sh.Description = *in.Description
	}
	deriveWindow(&sh, film.Duration)

	d := &model.ShowingDetails{
		Showing:    sh,
		HallID:     t.HallID,
		FilmID:     t.FilmID,
		FilmTitle:  film.Title,
		FilmActive: film.IsActive,
		HallActive: true,
		DateStarts: t.DateStarts,
		DateEnds:   t.DateEnds,
	}
	err = s.store.InHallTx(ctx, t.HallID, func(tx repository.ScheduleTx) error {
		if err := s.checkWindow(ctx, tx, *d); err != nil {
			return err
		}
		return tx.CreateShowing(ctx, &d.Showing)
	})
	if err != nil {
		return nil, wrapTx("schedule showing", err)
	}
	s.log.WithFields(logrus.Fields{
		"showing_id":  d.ID,
		"template_id": templateID,
		"hall_id":     t.HallID,
		"starts":      d.TimeStarts.String(),
		"hall_free":   d.TimeHallFree.String(),
	}).Info("showing scheduled")
	return d, nil
}

// UpdateShowing changes the start time, blocks or description of a
// showing and re-checks its window.
func (s *Scheduling) UpdateShowing(ctx context.Context, actor model.Actor, showingID uint64, in ShowingInput) (*model.ShowingDetails, error) {
	d, err := s.showings.GetDetails(ctx, showingID)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return nil, notFound("showing", showingID)
	}
	if err != nil {
		return nil, fmt.Errorf("load showing %d: %w", showingID, err)
	}
	film, err := s.film(ctx, d.FilmID)
	if err != nil {
		return nil, err
	}
	d.TimeStarts = in.TimeStarts
	if in.Ads != nil {
		d.AdsDuration = *in.Ads
	}
	if in.Cleaning != nil {
		d.CleaningDuration = *in.Cleaning
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	d.AdminID = actor.UserID
	deriveWindow(&d.Showing, film.Duration)

	err = s.store.InHallTx(ctx, d.HallID, func(tx repository.ScheduleTx) error {
		if err := s.checkWindow(ctx, tx, *d); err != nil {
			return err
		}
		return tx.UpdateShowing(ctx, &d.Showing)
	})
	if err != nil {
		return nil, wrapTx("update showing", err)
	}
	s.log.WithFields(logrus.Fields{"showing_id": showingID, "admin_id": actor.UserID}).Info("showing updated")
	return d, nil
}

func (s *Scheduling) checkWindow(ctx context.Context, tx repository.ScheduleTx, d model.ShowingDetails) error {
	existing, err := tx.ShowingsInHall(ctx, d.HallID, d.DateStarts, d.DateEnds)
	if err != nil {
		return err
	}
	if conflicts := scheduler.ShowingConflicts(d, existing); len(conflicts) > 0 {
		return &ShowingConflictError{Showings: conflicts}
	}
	return nil
}

// deriveWindow fills the end and hall-free times from the start time,
// the blocks and the film duration.
func deriveWindow(sh *model.Showing, film clock.Duration) {
	sh.TimeEnds = clock.Add(sh.TimeStarts, sh.AdsDuration, film)
	sh.TimeHallFree = clock.Add(sh.TimeEnds, sh.CleaningDuration)
}

func (s *Scheduling) film(ctx context.Context, id uint64) (*model.Film, error) {
	f, err := s.films.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFilmNotFound) {
		return nil, notFound("film", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load film %d: %w", id, err)
	}
	return f, nil
}

func (s *Scheduling) requireActiveHall(ctx context.Context, id uint64) error {
	h, err := s.halls.GetByID(ctx, id)
	if errors.Is(err, repository.ErrHallNotFound) {
		return notFound("hall", id)
	}
	if err != nil {
		return fmt.Errorf("load hall %d: %w", id, err)
	}
	if !h.IsActive {
		return &StateError{Problems: []string{fmt.Sprintf("hall %q is not active", h.Name)}}
	}
	return nil
}

// wrapTx keeps domain errors as they are and annotates everything else.
func wrapTx(op string, err error) error {
	var (
		ve *ValidationError
		nf *NotFoundError
		tc *TemplateConflictError
		sc *ShowingConflictError
		se *StateError
		pe *PurchaseError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &tc),
		errors.As(err, &sc), errors.As(err, &se), errors.As(err, &pe):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
