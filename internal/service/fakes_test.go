package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/queue"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL repositories. txMu
// serializes transactions the way row locks do; mu guards the maps.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex
	next uint64

	halls      map[uint64]*model.Hall
	seats      map[uint64]*model.Seat
	categories map[uint64]*model.SeatCategory
	films      map[uint64]*model.Film
	templates  map[uint64]*model.ShowingTemplate
	showings   map[uint64]*model.Showing
	prices     map[[2]uint64]model.Price
	users      map[uint64]*model.User
	purchases  []model.Purchase
	tickets    []model.Ticket
}

func newMemDB() *memDB {
	return &memDB{
		halls:      map[uint64]*model.Hall{},
		seats:      map[uint64]*model.Seat{},
		categories: map[uint64]*model.SeatCategory{},
		films:      map[uint64]*model.Film{},
		templates:  map[uint64]*model.ShowingTemplate{},
		showings:   map[uint64]*model.Showing{},
		prices:     map[[2]uint64]model.Price{},
		users:      map[uint64]*model.User{},
	}
}

func (db *memDB) id() uint64 {
	db.next++
	return db.next
}

func (db *memDB) addHall(h model.Hall) *model.Hall {
	db.mu.Lock()
	defer db.mu.Unlock()
	h.ID = db.id()
	db.halls[h.ID] = &h
	return &h
}

func (db *memDB) addCategory(name string) *model.SeatCategory {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := &model.SeatCategory{ID: db.id(), Name: name, Color: model.DefaultCategoryColor}
	db.categories[c.ID] = c
	return c
}

func (db *memDB) addFilm(f model.Film) *model.Film {
	db.mu.Lock()
	defer db.mu.Unlock()
	f.ID = db.id()
	db.films[f.ID] = &f
	return &f
}

func (db *memDB) addTemplate(t model.ShowingTemplate) *model.ShowingTemplate {
	db.mu.Lock()
	defer db.mu.Unlock()
	t.ID = db.id()
	db.templates[t.ID] = &t
	return &t
}

func (db *memDB) addShowing(s model.Showing) *model.Showing {
	db.mu.Lock()
	defer db.mu.Unlock()
	s.ID = db.id()
	db.showings[s.ID] = &s
	return &s
}

func (db *memDB) addUser(balance string) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: db.id(), Role: model.RoleCustomer, Balance: decimal.RequireFromString(balance), IsActive: true}
	u.Email = "user" + u.Balance.String() + "@example.com"
	db.users[u.ID] = u
	return u
}

func (db *memDB) balance(userID uint64) decimal.Decimal {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.users[userID].Balance
}

func (db *memDB) ticketCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tickets)
}

func (db *memDB) details(s *model.Showing) model.ShowingDetails {
	t := db.templates[s.TemplateID]
	h := db.halls[t.HallID]
	f := db.films[t.FilmID]
	return model.ShowingDetails{
		Showing:    *s,
		HallID:     h.ID,
		HallName:   h.Name,
		HallActive: h.IsActive,
		FilmID:     f.ID,
		FilmTitle:  f.Title,
		FilmActive: f.IsActive,
		DateStarts: t.DateStarts,
		DateEnds:   t.DateEnds,
	}
}

type memHalls struct{ *memDB }

func (r memHalls) GetByID(_ context.Context, id uint64) (*model.Hall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.halls[id]
	if !ok {
		return nil, repository.ErrHallNotFound
	}
	cp := *h
	return &cp, nil
}

func (r memHalls) SetActive(_ context.Context, id uint64, active bool, actor model.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.halls[id]
	if !ok {
		return repository.ErrHallNotFound
	}
	h.IsActive = active
	h.AdminID = actor.UserID
	return nil
}

type memSeats struct{ *memDB }

func (r memSeats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	cp := *s
	return &cp, nil
}

func (r memSeats) UpsertRange(_ context.Context, hallID, categoryID uint64, row, from, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for n := from; n <= to; n++ {
		found := false
		for _, s := range r.seats {
			if s.HallID == hallID && s.Row == row && s.Number == n {
				s.CategoryID = categoryID
				found = true
				break
			}
		}
		if !found {
			s := &model.Seat{ID: r.id(), HallID: hallID, CategoryID: categoryID, Row: row, Number: n}
			r.seats[s.ID] = s
		}
	}
	return nil
}

func (r memSeats) byHall(hallID uint64) []*model.Seat {
	var out []*model.Seat
	for _, s := range r.seats {
		if s.HallID == hallID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Number < out[j].Number
	})
	return out
}

func (r memSeats) CountByHall(_ context.Context, hallID uint64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHall(hallID)), nil
}

func (r memSeats) SnapshotByHall(_ context.Context, hallID uint64) ([]model.SeatSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.SeatSnapshot{}
	for _, s := range r.byHall(hallID) {
		out = append(out, model.SeatSnapshot{Row: s.Row, Number: s.Number, Category: r.categories[s.CategoryID].Name})
	}
	return out, nil
}

func (r memSeats) CategoriesInHall(_ context.Context, hallID uint64) ([]model.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[uint64]bool{}
	var out []model.SeatCategory
	for _, s := range r.byHall(hallID) {
		if !seen[s.CategoryID] {
			seen[s.CategoryID] = true
			out = append(out, *r.categories[s.CategoryID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memCategories struct{ *memDB }

func (r memCategories) GetByID(_ context.Context, id uint64) (*model.SeatCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

type memFilms struct{ *memDB }

func (r memFilms) GetByID(_ context.Context, id uint64) (*model.Film, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.films[id]
	if !ok {
		return nil, repository.ErrFilmNotFound
	}
	cp := *f
	return &cp, nil
}

type memTemplates struct{ *memDB }

func (r memTemplates) GetByID(_ context.Context, id uint64) (*model.ShowingTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTemplates) CountByHallEndingFrom(_ context.Context, hallID uint64, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.templates {
		if t.HallID == hallID && !t.DateEnds.Before(date) {
			n++
		}
	}
	return n, nil
}

type memShowings struct{ *memDB }

func (r memShowings) GetDetails(_ context.Context, id uint64) (*model.ShowingDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.showings[id]
	if !ok {
		return nil, repository.ErrShowingNotFound
	}
	d := r.details(s)
	return &d, nil
}

func (r memShowings) SetActive(_ context.Context, id uint64, active bool, actor model.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.showings[id]
	if !ok {
		return repository.ErrShowingNotFound
	}
	s.IsActive = active
	s.AdminID = actor.UserID
	return nil
}

type memPrices struct{ *memDB }

func (r memPrices) Get(_ context.Context, showingID, categoryID uint64) (*model.Price, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prices[[2]uint64{showingID, categoryID}]
	if !ok {
		return nil, repository.ErrPriceNotFound
	}
	return &p, nil
}

func (r memPrices) Upsert(_ context.Context, p *model.Price) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uint64{p.ShowingID, p.CategoryID}
	if old, ok := r.prices[key]; ok {
		p.ID = old.ID
	} else {
		p.ID = r.id()
	}
	r.prices[key] = *p
	return nil
}

func (r memPrices) CategoryIDs(_ context.Context, showingID uint64) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uint64
	for k := range r.prices {
		if k[0] == showingID {
			out = append(out, k[1])
		}
	}
	return out, nil
}

type memTickets struct{ *memDB }

func (r memTickets) exists(tickets []model.Ticket, showingID uint64, date time.Time, seatID uint64) bool {
	for _, t := range tickets {
		if t.ShowingID == showingID && t.SeatID == seatID && t.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (r memTickets) Exists(_ context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exists(r.tickets, showingID, date, seatID), nil
}

func (r memTickets) ListByUser(_ context.Context, userID uint64) ([]model.TicketDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner := map[uint64]uint64{}
	for _, p := range r.purchases {
		owner[p.ID] = p.UserID
	}
	var out []model.TicketDetails
	for i := len(r.tickets) - 1; i >= 0; i-- {
		t := r.tickets[i]
		if owner[t.PurchaseID] != userID {
			continue
		}
		sh := r.showings[t.ShowingID]
		d := r.details(sh)
		seat := r.seats[t.SeatID]
		out = append(out, model.TicketDetails{
			Ticket:     t,
			FilmTitle:  d.FilmTitle,
			HallName:   d.HallName,
			Row:        seat.Row,
			Number:     seat.Number,
			TimeStarts: sh.TimeStarts,
		})
	}
	return out, nil
}

type memUsers struct{ *memDB }

func (r memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return *u, nil
}

func (r memUsers) TotalSpent(_ context.Context, id uint64) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.purchases {
		if p.UserID == id {
			total = total.Add(p.TotalPrice)
		}
	}
	return total, nil
}

// memSchedule implements ScheduleStore. Writes go straight to the maps;
// every check runs before the first write, so nothing needs undoing.
type memSchedule struct{ *memDB }

func (r memSchedule) InHallTx(_ context.Context, _ uint64, fn func(tx repository.ScheduleTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(memScheduleTx{r.memDB})
}

type memScheduleTx struct{ *memDB }

func (tx memScheduleTx) TemplatesForFilmInHall(_ context.Context, filmID, hallID uint64) ([]model.ShowingTemplate, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	var out []model.ShowingTemplate
	for _, t := range tx.templates {
		if t.FilmID == filmID && t.HallID == hallID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (tx memScheduleTx) ShowingsInHall(_ context.Context, hallID uint64, from, to time.Time) ([]model.ShowingDetails, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	var out []model.ShowingDetails
	for _, s := range tx.showings {
		d := tx.details(s)
		if d.HallID != hallID || d.DateEnds.Before(from) || d.DateStarts.After(to) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx memScheduleTx) CreateTemplate(_ context.Context, t *model.ShowingTemplate) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	t.ID = tx.id()
	cp := *t
	tx.templates[t.ID] = &cp
	return nil
}

func (tx memScheduleTx) UpdateTemplateDates(_ context.Context, t *model.ShowingTemplate) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	cur := tx.templates[t.ID]
	cur.DateStarts, cur.DateEnds, cur.AdminID = t.DateStarts, t.DateEnds, t.AdminID
	return nil
}

func (tx memScheduleTx) CreateShowing(_ context.Context, s *model.Showing) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	s.ID = tx.id()
	cp := *s
	tx.showings[s.ID] = &cp
	return nil
}

func (tx memScheduleTx) UpdateShowing(_ context.Context, s *model.Showing) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	cp := *s
	tx.showings[s.ID] = &cp
	return nil
}

func (tx memScheduleTx) SoldTicketSlots(_ context.Context, templateID uint64, from time.Time) ([]repository.TicketSlot, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	var out []repository.TicketSlot
	for _, t := range tx.tickets {
		sh := tx.showings[t.ShowingID]
		if sh.TemplateID != templateID || t.Date.Before(from) {
			continue
		}
		out = append(out, repository.TicketSlot{ShowingID: sh.ID, Date: t.Date, TimeStarts: sh.TimeStarts})
	}
	return out, nil
}

// memPurchases implements PurchaseStore. Writes are staged and applied
// only when fn succeeds.
type memPurchases struct{ *memDB }

func (r memPurchases) WithTx(_ context.Context, fn func(tx repository.PurchaseTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	tx := &memPurchaseTx{db: r.memDB, debits: map[uint64]decimal.Decimal{}}
	if err := fn(tx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases = append(r.purchases, tx.purchases...)
	r.tickets = append(r.tickets, tx.tickets...)
	for id, amount := range tx.debits {
		r.users[id].Balance = r.users[id].Balance.Sub(amount)
	}
	return nil
}

type memPurchaseTx struct {
	db        *memDB
	purchases []model.Purchase
	tickets   []model.Ticket
	debits    map[uint64]decimal.Decimal
}

func (tx *memPurchaseTx) LockBalance(_ context.Context, userID uint64) (decimal.Decimal, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	u, ok := tx.db.users[userID]
	if !ok {
		return decimal.Zero, repository.ErrUserNotFound
	}
	return u.Balance, nil
}

func (tx *memPurchaseTx) CreatePurchase(_ context.Context, p *model.Purchase) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	p.ID = tx.db.id()
	tx.purchases = append(tx.purchases, *p)
	return nil
}

func (tx *memPurchaseTx) TicketExists(_ context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error) {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	r := memTickets{tx.db}
	return r.exists(tx.db.tickets, showingID, date, seatID) || r.exists(tx.tickets, showingID, date, seatID), nil
}

func (tx *memPurchaseTx) CreateTicket(_ context.Context, t *model.Ticket) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	r := memTickets{tx.db}
	if r.exists(tx.db.tickets, t.ShowingID, t.Date, t.SeatID) || r.exists(tx.tickets, t.ShowingID, t.Date, t.SeatID) {
		return repository.ErrTicketExists
	}
	t.ID = tx.db.id()
	tx.tickets = append(tx.tickets, *t)
	return nil
}

func (tx *memPurchaseTx) Debit(_ context.Context, userID uint64, amount decimal.Decimal) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.db.users[userID].Balance.LessThan(amount) {
		return repository.ErrBalanceTooLow
	}
	tx.debits[userID] = tx.debits[userID].Add(amount)
	return nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}
