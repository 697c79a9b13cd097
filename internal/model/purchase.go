package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

// Purchase groups the tickets bought in one checkout.  It is immutable
// once committed.
//
// Fields:
//  ID         – primary key identifier.
//  PublicID   – opaque identifier handed to clients and events.
//  UserID     – buyer.
//  TotalPrice – sum of the ticket prices.
//  CreatedAt  – creation timestamp.
type Purchase struct {
	ID         uint64          `json:"id"`          // purchases.id
	PublicID   string          `json:"public_id"`   // purchases.public_id
	UserID     uint64          `json:"user_id"`     // purchases.user_id
	TotalPrice decimal.Decimal `json:"total_price"` // purchases.total_price
	CreatedAt  time.Time       `json:"created_at"`  // purchases.created_at
}

// Ticket is a sold seat.  The (ShowingID, Date, SeatID) triple is unique
// and is the only record of whether a seat is sold.
//
// Fields:
//  ID         – primary key identifier.
//  PurchaseID – owning purchase.
//  ShowingID  – showing the seat was sold for.
//  Date       – calendar date of the screening.
//  SeatID     – sold seat.
//  Price      – price charged at purchase time.
type Ticket struct {
	ID         uint64          `json:"id"`          // tickets.id
	PurchaseID uint64          `json:"purchase_id"` // tickets.purchase_id
	ShowingID  uint64          `json:"showing_id"`  // tickets.showing_id
	Date       time.Time       `json:"date"`        // tickets.date_showing
	SeatID     uint64          `json:"seat_id"`     // tickets.seat_id
	Price      decimal.Decimal `json:"price"`       // tickets.price
	CreatedAt  time.Time       `json:"created_at"`  // tickets.created_at
}

// TicketDetails is a ticket joined with what a customer needs to use it.
type TicketDetails struct {
	Ticket
	FilmTitle  string          `json:"film_title"`
	HallName   string          `json:"hall_name"`
	Row        int             `json:"row"`
	Number     int             `json:"number"`
	TimeStarts clock.TimeOfDay `json:"time_starts"`
	Active     bool            `json:"active"`
}

// TicketActive reports whether a ticket for the given date and start time
// can still be used: the date is in the future, or it is today and the
// screening has not started.
func TicketActive(date time.Time, starts clock.TimeOfDay, today time.Time, now clock.TimeOfDay) bool {
	if date.After(today) {
		return true
	}
	return date.Equal(today) && starts >= now
}
