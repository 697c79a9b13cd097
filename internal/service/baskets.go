package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// Baskets manages per-session reservation ledgers. Expiry is evaluated
// lazily on every access.
type Baskets struct {
	store    basket.Store
	seats    SeatRepository
	showings ShowingRepository
	prices   PriceRepository
	tickets  TicketRepository
	settings
}

// NewBaskets builds a Baskets service.
func NewBaskets(store basket.Store, seats SeatRepository, showings ShowingRepository, prices PriceRepository, tickets TicketRepository, opts ...Option) *Baskets {
	if store == nil || seats == nil || showings == nil || prices == nil || tickets == nil {
		panic("nil dependency passed to NewBaskets")
	}
	return &Baskets{
		store:    store,
		seats:    seats,
		showings: showings,
		prices:   prices,
		tickets:  tickets,
		settings: newSettings(opts),
	}
}

// TTL returns the ledger lifetime.
func (s *Baskets) TTL() time.Duration { return s.basketTTL }

// Get returns the session's ledger, discarding it if it has expired.
func (s *Baskets) Get(ctx context.Context, session string) (basket.Ledger, error) {
	if session == "" {
		return basket.Ledger{}, invalid("session", "is required")
	}
	l, err := s.store.Load(ctx, session)
	if err != nil {
		return basket.Ledger{}, err
	}
	if l.Expired(s.clock.Now(), s.basketTTL) {
		if err := s.store.Delete(ctx, session); err != nil {
			return basket.Ledger{}, err
		}
		s.log.WithField("session", session).Debug("basket expired")
		return basket.Ledger{}, nil
	}
	return l, nil
}

// Add puts a hold for the seat at the showing on date into the session's
// ledger. Adding a key that is already held returns the stored hold.
// Nothing is changed when a check fails; the HoldError names the first
// rule that was violated.
func (s *Baskets) Add(ctx context.Context, session string, seatID, showingID uint64, date time.Time) (basket.Hold, error) {
	date = clock.DateOf(date)
	l, err := s.Get(ctx, session)
	if err != nil {
		return basket.Hold{}, err
	}
	now := s.clock.Now()
	if !l.Empty() && l.Remaining(now, s.basketTTL) <= 0 {
		// at the last instant of its lifetime the ledger cannot be stored
		// again, so the hold starts a new one
		l = basket.Ledger{}
	}
	key := basket.Key(seatID, showingID, date)
	if h, ok := l.Get(key); ok {
		return h, nil
	}
	h, err := s.validate(ctx, seatID, showingID, date)
	if err != nil {
		return basket.Hold{}, err
	}
	stored, _ := l.Put(h, now)
	if err := s.store.Save(ctx, session, l, l.Remaining(now, s.basketTTL)); err != nil {
		return basket.Hold{}, err
	}
	s.log.WithFields(logrus.Fields{
		"session":    session,
		"seat_id":    seatID,
		"showing_id": showingID,
		"date":       date.Format(clock.DateLayout),
	}).Debug("hold added")
	return stored, nil
}

func (s *Baskets) validate(ctx context.Context, seatID, showingID uint64, date time.Time) (basket.Hold, error) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if errors.Is(err, repository.ErrSeatNotFound) {
		return basket.Hold{}, &HoldError{Rule: RuleSeatNotFound, Message: fmt.Sprintf("seat %d does not exist", seatID)}
	}
	if err != nil {
		return basket.Hold{}, fmt.Errorf("load seat %d: %w", seatID, err)
	}
	d, err := s.showings.GetDetails(ctx, showingID)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return basket.Hold{}, &HoldError{Rule: RuleShowingNotFound, Message: fmt.Sprintf("showing %d does not exist", showingID)}
	}
	if err != nil {
		return basket.Hold{}, fmt.Errorf("load showing %d: %w", showingID, err)
	}
	if seat.HallID != d.HallID {
		return basket.Hold{}, &HoldError{Rule: RuleHallMismatch, Message: "seat is not in the hall of this showing"}
	}
	today, now := s.today()
	if !d.InRun(today, now, date) {
		return basket.Hold{}, &HoldError{Rule: RuleNotInRun, Message: "showing is not on sale"}
	}
	if date.Before(today) || date.Before(d.DateStarts) || date.After(d.DateEnds) {
		return basket.Hold{}, &HoldError{
			Rule: RuleDateOutOfRange,
			Message: fmt.Sprintf("date must be between %s and %s",
				maxDate(today, d.DateStarts).Format(clock.DateLayout), d.DateEnds.Format(clock.DateLayout)),
		}
	}
	sold, err := s.tickets.Exists(ctx, showingID, date, seatID)
	if err != nil {
		return basket.Hold{}, fmt.Errorf("check ticket: %w", err)
	}
	if sold {
		return basket.Hold{}, &HoldError{Rule: RuleAlreadySold, Message: "seat is already sold"}
	}
	price, err := s.prices.Get(ctx, showingID, seat.CategoryID)
	if errors.Is(err, repository.ErrPriceNotFound) {
		return basket.Hold{}, &HoldError{Rule: RulePriceMissing, Message: "seat category has no price for this showing"}
	}
	if err != nil {
		return basket.Hold{}, fmt.Errorf("load price: %w", err)
	}
	return basket.Hold{
		Key:        basket.Key(seatID, showingID, date),
		SeatID:     seatID,
		ShowingID:  showingID,
		Date:       date,
		HallID:     d.HallID,
		Row:        seat.Row,
		Number:     seat.Number,
		CategoryID: seat.CategoryID,
		Price:      price.Amount,
	}, nil
}

// Remove drops the hold under key and reports whether it was there.
func (s *Baskets) Remove(ctx context.Context, session, key string) (bool, error) {
	l, err := s.Get(ctx, session)
	if err != nil {
		return false, err
	}
	if !l.Remove(key) {
		return false, nil
	}
	if err := s.store.Save(ctx, session, l, l.Remaining(s.clock.Now(), s.basketTTL)); err != nil {
		return false, err
	}
	return true, nil
}

// Clear discards the session's ledger.
func (s *Baskets) Clear(ctx context.Context, session string) error {
	return s.store.Delete(ctx, session)
}

// load returns the stored ledger without applying expiry.
func (s *Baskets) load(ctx context.Context, session string) (basket.Ledger, error) {
	if session == "" {
		return basket.Ledger{}, invalid("session", "is required")
	}
	return s.store.Load(ctx, session)
}
