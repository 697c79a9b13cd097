package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ScheduleTx is the view of the schedule available while a hall's
// schedule lock is held.  Reads observe every showing committed before
// the lock was taken.
type ScheduleTx interface {
	TemplatesForFilmInHall(ctx context.Context, filmID, hallID uint64) ([]model.ShowingTemplate, error)
	ShowingsInHall(ctx context.Context, hallID uint64, from, to time.Time) ([]model.ShowingDetails, error)
	CreateTemplate(ctx context.Context, t *model.ShowingTemplate) error
	UpdateTemplateDates(ctx context.Context, t *model.ShowingTemplate) error
	CreateShowing(ctx context.Context, s *model.Showing) error
	UpdateShowing(ctx context.Context, s *model.Showing) error
	SoldTicketSlots(ctx context.Context, templateID uint64, from time.Time) ([]TicketSlot, error)
}

// TicketSlot is the date and start time of a sold ticket.
type TicketSlot struct {
	ShowingID  uint64
	Date       time.Time
	TimeStarts clock.TimeOfDay
}

// PurchaseTx is the set of writes a purchase performs atomically.
type PurchaseTx interface {
	LockBalance(ctx context.Context, userID uint64) (decimal.Decimal, error)
	CreatePurchase(ctx context.Context, p *model.Purchase) error
	TicketExists(ctx context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	Debit(ctx context.Context, userID uint64, amount decimal.Decimal) error
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func inTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
