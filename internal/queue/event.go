// Package queue defines the purchase notification exchanged over RabbitMQ,
// the publisher used by the purchase service and the background consumer
// that records confirmed purchases.
package queue

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PurchaseConfirmedQueue is the durable queue purchase events go to.
const PurchaseConfirmedQueue = "purchase.confirmed"

// PurchaseConfirmedEvent is published after a purchase transaction has
// committed. It carries enough to log or notify without reading the
// database.
type PurchaseConfirmedEvent struct {
	EventID     string          `json:"event_id"`
	PurchaseID  string          `json:"purchase_id"`
	UserID      uint64          `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	Tickets     []TicketLine    `json:"tickets"`
	ConfirmedAt string          `json:"confirmed_at"`
}

// TicketLine describes one sold seat in an event.
type TicketLine struct {
	ShowingID uint64          `json:"showing_id"`
	Date      string          `json:"date"`
	SeatID    uint64          `json:"seat_id"`
	Row       int             `json:"row"`
	Number    int             `json:"number"`
	Price     decimal.Decimal `json:"price"`
}

// Line renders the event as a single log line.
func (ev PurchaseConfirmedEvent) Line() string {
	seats := make([]string, 0, len(ev.Tickets))
	for _, t := range ev.Tickets {
		seats = append(seats, fmt.Sprintf("%d:%s:R%dS%d", t.ShowingID, t.Date, t.Row, t.Number))
	}
	return fmt.Sprintf("[%s] Purchase confirmed | purchase_id=%s | event_id=%s | user_id=%d | total=%s | tickets=%d | seats=[%s]",
		ev.ConfirmedAt, ev.PurchaseID, ev.EventID, ev.UserID, ev.Total.StringFixed(2), len(ev.Tickets), strings.Join(seats, ","))
}
