package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

func TestScheduleShowingWindows(t *testing.T) {
	// the fixture showing occupies 18:00-19:50
	cases := []struct {
		name     string
		starts   clock.TimeOfDay
		conflict bool
	}{
		{"inside", clock.At(19, 0), true},
		{"starts when hall is free", clock.At(19, 50), false},
		{"frees hall at start", clock.At(16, 10), false},
		{"frees hall one minute late", clock.At(16, 11), true},
		{"late show crossing midnight", clock.At(23, 0), false},
		{"covers the whole showing", clock.At(17, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			d, err := f.scheduling().ScheduleShowing(context.Background(), admin, f.template.ID, ShowingInput{TimeStarts: tc.starts})
			if tc.conflict {
				var ce *ShowingConflictError
				require.ErrorAs(t, err, &ce)
				assert.ErrorIs(t, err, ErrConflict)
				require.Len(t, ce.Showings, 1)
				assert.Equal(t, f.showing.ID, ce.Showings[0].ID)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, d.ID)
			assert.False(t, d.IsActive)
		})
	}
}

func TestScheduleShowingAfterMidnightShow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.scheduling()

	late, err := s.ScheduleShowing(ctx, admin, f.template.ID, ShowingInput{TimeStarts: clock.At(23, 0)})
	require.NoError(t, err)
	assert.Equal(t, clock.At(0, 40), late.TimeEnds)
	assert.Equal(t, clock.At(0, 50), late.TimeHallFree)

	_, err = s.ScheduleShowing(ctx, admin, f.template.ID, ShowingInput{TimeStarts: clock.At(0, 30)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.ScheduleShowing(ctx, admin, f.template.ID, ShowingInput{TimeStarts: clock.At(0, 50)})
	assert.NoError(t, err)
}

func TestScheduleShowingDerivesWindow(t *testing.T) {
	f := newFixture(t)
	ads := clock.Duration{Minutes: 25}
	cleaning := clock.Duration{Minutes: 5}
	desc := "premiere"
	d, err := f.scheduling().ScheduleShowing(context.Background(), admin, f.template.ID, ShowingInput{
		TimeStarts:  clock.At(10, 0),
		Ads:         &ads,
		Cleaning:    &cleaning,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, clock.At(11, 55), d.TimeEnds)
	assert.Equal(t, clock.At(12, 0), d.TimeHallFree)
	assert.Equal(t, "premiere", d.Description)
	assert.Equal(t, admin.UserID, d.AdminID)

	d, err = f.scheduling().ScheduleShowing(context.Background(), admin, f.template.ID, ShowingInput{TimeStarts: clock.At(13, 0)})
	require.NoError(t, err)
	assert.Equal(t, DefaultAdsDuration, d.AdsDuration)
	assert.Equal(t, DefaultCleaningDuration, d.CleaningDuration)
	assert.Equal(t, clock.At(14, 50), d.TimeHallFree)
}

func TestScheduleShowingIgnoresOtherHallsAndDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.db.addHall(model.Hall{Name: "Green", IsActive: true})
	film2 := f.db.addFilm(model.Film{Title: "Dune", Duration: clock.Duration{Hours: 2}, IsActive: true})

	elsewhere := f.db.addTemplate(model.ShowingTemplate{FilmID: film2.ID, HallID: other.ID, DateStarts: f.today, DateEnds: f.day(5)})
	_, err := f.scheduling().ScheduleShowing(ctx, admin, elsewhere.ID, ShowingInput{TimeStarts: clock.At(18, 0)})
	assert.NoError(t, err)

	later := f.db.addTemplate(model.ShowingTemplate{FilmID: film2.ID, HallID: f.hall.ID, DateStarts: f.day(6), DateEnds: f.day(8)})
	_, err = f.scheduling().ScheduleShowing(ctx, admin, later.ID, ShowingInput{TimeStarts: clock.At(18, 0)})
	assert.NoError(t, err)

	overlapping := f.db.addTemplate(model.ShowingTemplate{FilmID: film2.ID, HallID: f.hall.ID, DateStarts: f.day(5), DateEnds: f.day(8)})
	_, err = f.scheduling().ScheduleShowing(ctx, admin, overlapping.ID, ShowingInput{TimeStarts: clock.At(18, 0)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestScheduleShowingRequiresActiveHall(t *testing.T) {
	f := newFixture(t)
	f.db.halls[f.hall.ID].IsActive = false
	_, err := f.scheduling().ScheduleShowing(context.Background(), admin, f.template.ID, ShowingInput{TimeStarts: clock.At(9, 0)})
	assert.ErrorIs(t, err, ErrState)

	_, err = f.scheduling().ScheduleShowing(context.Background(), admin, 999, ShowingInput{TimeStarts: clock.At(9, 0)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.scheduling()

	tpl, err := s.ScheduleTemplate(ctx, admin, f.film.ID, f.hall.ID, f.day(10), nil)
	require.NoError(t, err)
	assert.Equal(t, f.day(10+DefaultTemplateSpanDays), tpl.DateEnds)

	end := f.day(7)
	_, err = s.ScheduleTemplate(ctx, admin, f.film.ID, f.hall.ID, f.day(3), &end)
	var tc *TemplateConflictError
	require.ErrorAs(t, err, &tc)
	assert.Equal(t, f.template.ID, tc.Templates[0].ID)

	// the day after the fixture template ends is free
	_, err = s.ScheduleTemplate(ctx, admin, f.film.ID, f.hall.ID, f.day(6), &end)
	assert.NoError(t, err)

	film2 := f.db.addFilm(model.Film{Title: "Dune", Duration: clock.Duration{Hours: 2}, IsActive: true})
	_, err = s.ScheduleTemplate(ctx, admin, film2.ID, f.hall.ID, f.today, nil)
	assert.NoError(t, err)

	before := f.day(-1)
	_, err = s.ScheduleTemplate(ctx, admin, film2.ID, f.hall.ID, f.today, &before)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.ScheduleTemplate(ctx, admin, 999, f.hall.ID, f.today, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func (f *fixture) sellTicket(showingID, seatID uint64, date time.Time) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.tickets = append(f.db.tickets, model.Ticket{ID: f.db.id(), ShowingID: showingID, SeatID: seatID, Date: date})
}

func TestUpdateTemplateKeepsSoldTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.scheduling()
	f.sellTicket(f.showing.ID, f.seat(f.hall.ID, 1, 1), f.day(3))

	_, err := s.UpdateTemplate(ctx, admin, f.template.ID, f.today, f.day(1))
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, f.day(5), f.db.templates[f.template.ID].DateEnds)

	tpl, err := s.UpdateTemplate(ctx, admin, f.template.ID, f.day(1), f.day(4))
	require.NoError(t, err)
	assert.Equal(t, f.day(1), tpl.DateStarts)
	assert.Equal(t, f.day(4), f.db.templates[f.template.ID].DateEnds)
}

func TestUpdateTemplateIgnoresUsedTickets(t *testing.T) {
	f := newFixture(t)
	f.sellTicket(f.showing.ID, f.seat(f.hall.ID, 1, 1), f.today)
	f.clk.Set(noon.Add(7 * time.Hour)) // 19:00, the 18:00 screening has started

	_, err := f.scheduling().UpdateTemplate(context.Background(), admin, f.template.ID, f.day(1), f.day(3))
	assert.NoError(t, err)
}

func TestUpdateTemplateRechecksShowings(t *testing.T) {
	f := newFixture(t)
	film2 := f.db.addFilm(model.Film{Title: "Dune", Duration: clock.Duration{Hours: 2}, IsActive: true})
	later := f.db.addTemplate(model.ShowingTemplate{FilmID: film2.ID, HallID: f.hall.ID, DateStarts: f.day(6), DateEnds: f.day(8)})
	f.addShowing(later.ID, clock.At(18, 30), false)

	_, err := f.scheduling().UpdateTemplate(context.Background(), admin, f.template.ID, f.today, f.day(7))
	var ce *ShowingConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, f.day(5), f.db.templates[f.template.ID].DateEnds)
}

func TestUpdateShowingDoesNotConflictWithItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.scheduling()

	d, err := s.UpdateShowing(ctx, admin, f.showing.ID, ShowingInput{TimeStarts: clock.At(18, 5)})
	require.NoError(t, err)
	assert.Equal(t, clock.At(19, 55), d.TimeHallFree)
	assert.Equal(t, clock.At(18, 5), f.db.showings[f.showing.ID].TimeStarts)

	other := f.addShowing(f.template.ID, clock.At(21, 0), false)
	_, err = s.UpdateShowing(ctx, admin, other.ID, ShowingInput{TimeStarts: clock.At(19, 0)})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, clock.At(21, 0), f.db.showings[other.ID].TimeStarts)
}
