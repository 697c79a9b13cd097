package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
	"github.com/iliyamo/cinema-showtimes/internal/service"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, email, password, role string, cost int, balance decimal.Decimal) (uint64, error) {
	args := m.Called(email, role, balance.String())
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	args := m.Called(id)
	return args.Get(0).(model.User), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	return m.Called(userID, hash).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, hash string, now time.Time) (uint64, error) {
	args := m.Called(hash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, hash string) error {
	return m.Called(hash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(userID).Error(0)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Account(ctx context.Context, userID uint64) (*service.Account, error) {
	args := m.Called(userID)
	a, _ := args.Get(0).(*service.Account)
	return a, args.Error(1)
}

type mockScheduling struct{ mock.Mock }

func (m *mockScheduling) ScheduleTemplate(ctx context.Context, a model.Actor, filmID, hallID uint64, starts time.Time, ends *time.Time) (*model.ShowingTemplate, error) {
	args := m.Called(a, filmID, hallID, starts, ends)
	t, _ := args.Get(0).(*model.ShowingTemplate)
	return t, args.Error(1)
}

func (m *mockScheduling) UpdateTemplate(ctx context.Context, a model.Actor, id uint64, starts, ends time.Time) (*model.ShowingTemplate, error) {
	args := m.Called(a, id, starts, ends)
	t, _ := args.Get(0).(*model.ShowingTemplate)
	return t, args.Error(1)
}

func (m *mockScheduling) ScheduleShowing(ctx context.Context, a model.Actor, templateID uint64, in service.ShowingInput) (*model.ShowingDetails, error) {
	args := m.Called(a, templateID, in)
	d, _ := args.Get(0).(*model.ShowingDetails)
	return d, args.Error(1)
}

func (m *mockScheduling) UpdateShowing(ctx context.Context, a model.Actor, id uint64, in service.ShowingInput) (*model.ShowingDetails, error) {
	args := m.Called(a, id, in)
	d, _ := args.Get(0).(*model.ShowingDetails)
	return d, args.Error(1)
}

type mockInventory struct{ mock.Mock }

func (m *mockInventory) CreateOrUpdateSeats(ctx context.Context, a model.Actor, hallID, categoryID uint64, row, from, to int) error {
	return m.Called(a, hallID, categoryID, row, from, to).Error(0)
}

func (m *mockInventory) ActivateHall(ctx context.Context, a model.Actor, hallID uint64) (*service.HallActivation, error) {
	args := m.Called(a, hallID)
	r, _ := args.Get(0).(*service.HallActivation)
	return r, args.Error(1)
}

func (m *mockInventory) DeactivateHall(ctx context.Context, a model.Actor, hallID uint64) error {
	return m.Called(a, hallID).Error(0)
}

func (m *mockInventory) SeatCategoriesInUse(ctx context.Context, hallID uint64) ([]model.SeatCategory, error) {
	args := m.Called(hallID)
	c, _ := args.Get(0).([]model.SeatCategory)
	return c, args.Error(1)
}

type mockActivation struct{ mock.Mock }

func (m *mockActivation) ActivateShowing(ctx context.Context, a model.Actor, id uint64) (*service.ActivationReport, error) {
	args := m.Called(a, id)
	r, _ := args.Get(0).(*service.ActivationReport)
	return r, args.Error(1)
}

func (m *mockActivation) SetPrice(ctx context.Context, a model.Actor, showingID, categoryID uint64, amount decimal.Decimal) (*model.Price, error) {
	args := m.Called(a, showingID, categoryID, amount.String())
	p, _ := args.Get(0).(*model.Price)
	return p, args.Error(1)
}

type mockFilms struct{ mock.Mock }

func (m *mockFilms) Create(ctx context.Context, f *model.Film) error {
	args := m.Called(f.Title, f.Duration)
	f.ID = 1
	f.IsActive = true
	return args.Error(0)
}

func (m *mockFilms) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	args := m.Called(id)
	f, _ := args.Get(0).(*model.Film)
	return f, args.Error(1)
}

func (m *mockFilms) Update(ctx context.Context, f *model.Film) error {
	return m.Called(*f).Error(0)
}

type mockCategories struct{ mock.Mock }

func (m *mockCategories) Create(ctx context.Context, c *model.SeatCategory) error {
	return m.Called(c.Name, c.Color).Error(0)
}

type mockHalls struct{ mock.Mock }

func (m *mockHalls) Create(ctx context.Context, h *model.Hall) error {
	return m.Called(h.Name, h.QuantityRows, h.QuantitySeats).Error(0)
}

type mockBaskets struct{ mock.Mock }

func (m *mockBaskets) TTL() time.Duration { return 10 * time.Minute }

func (m *mockBaskets) Get(ctx context.Context, session string) (basket.Ledger, error) {
	args := m.Called(session)
	return args.Get(0).(basket.Ledger), args.Error(1)
}

func (m *mockBaskets) Add(ctx context.Context, session string, seatID, showingID uint64, date time.Time) (basket.Hold, error) {
	args := m.Called(session, seatID, showingID, date)
	return args.Get(0).(basket.Hold), args.Error(1)
}

func (m *mockBaskets) Remove(ctx context.Context, session, key string) (bool, error) {
	args := m.Called(session, key)
	return args.Bool(0), args.Error(1)
}

type mockPurchases struct{ mock.Mock }

func (m *mockPurchases) Purchase(ctx context.Context, userID uint64, session string) (*service.Receipt, error) {
	args := m.Called(userID, session)
	r, _ := args.Get(0).(*service.Receipt)
	return r, args.Error(1)
}

func (m *mockPurchases) History(ctx context.Context, userID uint64) ([]model.TicketDetails, error) {
	args := m.Called(userID)
	t, _ := args.Get(0).([]model.TicketDetails)
	return t, args.Error(1)
}

type mockBoard struct{ mock.Mock }

func (m *mockBoard) List(ctx context.Context, date time.Time, order string) ([]repository.BoardEntry, error) {
	args := m.Called(date, order)
	e, _ := args.Get(0).([]repository.BoardEntry)
	return e, args.Error(1)
}

func (m *mockBoard) Showing(ctx context.Context, id uint64) (*model.ShowingDetails, error) {
	args := m.Called(id)
	d, _ := args.Get(0).(*model.ShowingDetails)
	return d, args.Error(1)
}

func (m *mockBoard) SeatMap(ctx context.Context, id uint64, date time.Time) ([]repository.SeatState, error) {
	args := m.Called(id, date)
	s, _ := args.Get(0).([]repository.SeatState)
	return s, args.Error(1)
}

type mockSeats struct{ mock.Mock }

func (m *mockSeats) ListByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	args := m.Called(hallID)
	s, _ := args.Get(0).([]model.Seat)
	return s, args.Error(1)
}
