package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

var (
	noon  = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	admin = model.Actor{UserID: 1}
)

// fixture is an active hall with one row of three "base" seats, a
// 1h30 film and a template running from today for five days with one
// active 18:00 showing priced at 10.
type fixture struct {
	t     *testing.T
	db    *memDB
	clk   *clock.Manual
	hook  *test.Hook
	opts  []Option
	store *basket.MemoryStore

	today    time.Time
	hall     *model.Hall
	base     *model.SeatCategory
	film     *model.Film
	template *model.ShowingTemplate
	showing  *model.Showing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newMemDB()
	clk := clock.NewManual(noon)
	logger, hook := test.NewNullLogger()
	f := &fixture{
		t:     t,
		db:    db,
		clk:   clk,
		hook:  hook,
		opts:  []Option{WithClock(clk), WithLogger(logger)},
		store: basket.NewMemoryStore(),
		today: clock.DateOf(noon),
	}
	f.hall = db.addHall(model.Hall{Name: "Red", QuantityRows: 1, QuantitySeats: 3, IsActive: true})
	f.base = db.addCategory("base")
	require.NoError(t, memSeats{db}.UpsertRange(context.Background(), f.hall.ID, f.base.ID, 1, 1, 3))
	f.film = db.addFilm(model.Film{Title: "Arrival", Duration: clock.Duration{Hours: 1, Minutes: 30}, IsActive: true})
	f.template = db.addTemplate(model.ShowingTemplate{
		FilmID:     f.film.ID,
		HallID:     f.hall.ID,
		DateStarts: f.today,
		DateEnds:   f.day(5),
	})
	f.showing = f.addShowing(f.template.ID, clock.At(18, 0), true)
	f.setPrice(f.showing.ID, f.base.ID, "10")
	return f
}

func (f *fixture) day(n int) time.Time { return f.today.AddDate(0, 0, n) }

func (f *fixture) addShowing(templateID uint64, starts clock.TimeOfDay, active bool) *model.Showing {
	sh := model.Showing{
		TemplateID:       templateID,
		TimeStarts:       starts,
		AdsDuration:      DefaultAdsDuration,
		CleaningDuration: DefaultCleaningDuration,
		IsActive:         active,
	}
	deriveWindow(&sh, f.db.films[f.db.templates[templateID].FilmID].Duration)
	return f.db.addShowing(sh)
}

func (f *fixture) setPrice(showingID, categoryID uint64, amount string) {
	require.NoError(f.t, memPrices{f.db}.Upsert(context.Background(), &model.Price{
		ShowingID:  showingID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
	}))
}

// seat returns the id of the seat at row/number in hall.
func (f *fixture) seat(hallID uint64, row, number int) uint64 {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.seats {
		if s.HallID == hallID && s.Row == row && s.Number == number {
			return s.ID
		}
	}
	f.t.Fatalf("no seat %d/%d in hall %d", row, number, hallID)
	return 0
}

func (f *fixture) inventory() *Inventory {
	return NewInventory(memHalls{f.db}, memSeats{f.db}, memCategories{f.db}, memTemplates{f.db}, f.opts...)
}

func (f *fixture) scheduling() *Scheduling {
	return NewScheduling(memFilms{f.db}, memHalls{f.db}, memTemplates{f.db}, memShowings{f.db}, memSchedule{f.db}, f.opts...)
}

func (f *fixture) activation() *Activation {
	return NewActivation(memShowings{f.db}, memSeats{f.db}, memPrices{f.db}, memCategories{f.db}, f.opts...)
}

func (f *fixture) baskets() *Baskets {
	return NewBaskets(f.store, memSeats{f.db}, memShowings{f.db}, memPrices{f.db}, memTickets{f.db}, f.opts...)
}

func (f *fixture) purchases(pub EventPublisher) *Purchases {
	return NewPurchases(f.baskets(), memPurchases{f.db}, memTickets{f.db}, memUsers{f.db}, pub, f.opts...)
}
