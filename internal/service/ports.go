// Package service implements the cinema core: hall inventory, scheduling,
// showing activation, the reservation basket and the purchase
// transaction. Services depend on the narrow repository interfaces below;
// the MySQL repositories satisfy them in production.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/queue"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

type HallRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Hall, error)
	SetActive(ctx context.Context, id uint64, active bool, actor model.Actor) error
}

type SeatRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	UpsertRange(ctx context.Context, hallID, categoryID uint64, row, from, to int) error
	CountByHall(ctx context.Context, hallID uint64) (int, error)
	SnapshotByHall(ctx context.Context, hallID uint64) ([]model.SeatSnapshot, error)
	CategoriesInHall(ctx context.Context, hallID uint64) ([]model.SeatCategory, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.SeatCategory, error)
}

type FilmRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Film, error)
}

type TemplateRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.ShowingTemplate, error)
	CountByHallEndingFrom(ctx context.Context, hallID uint64, date time.Time) (int, error)
}

// ScheduleStore serializes schedule writes per hall.
type ScheduleStore interface {
	InHallTx(ctx context.Context, hallID uint64, fn func(tx repository.ScheduleTx) error) error
}

type ShowingRepository interface {
	GetDetails(ctx context.Context, id uint64) (*model.ShowingDetails, error)
	SetActive(ctx context.Context, id uint64, active bool, actor model.Actor) error
}

type PriceRepository interface {
	Get(ctx context.Context, showingID, categoryID uint64) (*model.Price, error)
	Upsert(ctx context.Context, p *model.Price) error
	CategoryIDs(ctx context.Context, showingID uint64) ([]uint64, error)
}

type TicketRepository interface {
	Exists(ctx context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.TicketDetails, error)
}

// PurchaseStore runs the purchase writes in one transaction.
type PurchaseStore interface {
	WithTx(ctx context.Context, fn func(tx repository.PurchaseTx) error) error
}

// UserRepository reads account balances.
type UserRepository interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	TotalSpent(ctx context.Context, id uint64) (decimal.Decimal, error)
}

// EventPublisher delivers purchase notifications.
type EventPublisher interface {
	PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error
}
