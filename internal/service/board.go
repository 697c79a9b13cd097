package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// BoardRepository reads what is on sale.
type BoardRepository interface {
	GetDetails(ctx context.Context, id uint64) (*model.ShowingDetails, error)
	Board(ctx context.Context, date time.Time, order string) ([]repository.BoardEntry, error)
	SeatMap(ctx context.Context, showingID uint64, date time.Time) ([]repository.SeatState, error)
}

// Board is the public listing of showings for today and tomorrow.
type Board struct {
	showings BoardRepository
	settings
}

// NewBoard builds a Board.
func NewBoard(showings BoardRepository, opts ...Option) *Board {
	if showings == nil {
		panic("nil repository passed to NewBoard")
	}
	return &Board{showings: showings, settings: newSettings(opts)}
}

// List returns the showings on sale on date, which must be today or
// tomorrow.  A zero date means today.  Today's showings that already
// started are left out.
func (b *Board) List(ctx context.Context, date time.Time, order string) ([]repository.BoardEntry, error) {
	today, now := b.today()
	if date.IsZero() {
		date = today
	}
	date = clock.DateOf(date)
	if date.Before(today) || date.After(today.AddDate(0, 0, 1)) {
		return nil, invalid("date", "must be today or tomorrow")
	}
	switch order {
	case "", repository.BoardByTime, repository.BoardCheapFirst, repository.BoardExpensiveFirst:
	default:
		return nil, invalid("order", "must be time, cheap or expensive")
	}
	entries, err := b.showings.Board(ctx, date, order)
	if err != nil {
		return nil, fmt.Errorf("list board: %w", err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e.InRun(today, now, date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Showing returns one showing.
func (b *Board) Showing(ctx context.Context, id uint64) (*model.ShowingDetails, error) {
	d, err := b.showings.GetDetails(ctx, id)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return nil, notFound("showing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load showing %d: %w", id, err)
	}
	return d, nil
}

// SeatMap returns the seats of the showing on date with their prices and
// sold flags.  The showing must be on sale on that date.
func (b *Board) SeatMap(ctx context.Context, showingID uint64, date time.Time) ([]repository.SeatState, error) {
	d, err := b.Showing(ctx, showingID)
	if err != nil {
		return nil, err
	}
	today, now := b.today()
	if date.IsZero() {
		date = today
	}
	date = clock.DateOf(date)
	if !d.InRun(today, now, date) || date.Before(d.DateStarts) || date.After(d.DateEnds) {
		return nil, invalid("date", "showing is not on sale on "+date.Format(clock.DateLayout))
	}
	seats, err := b.showings.SeatMap(ctx, showingID, date)
	if err != nil {
		return nil, fmt.Errorf("seat map: %w", err)
	}
	return seats, nil
}
