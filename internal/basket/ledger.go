// Package basket holds the reservation ledger: the short-lived set of seat
// holds a session builds before purchasing. The ledger is a plain value;
// stores persist it per session id.
package basket

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a ledger lives after its first hold was added.
const DefaultTTL = 10 * time.Minute

// Hold is a non-binding intent to buy one seat for one showing on one
// date. Price is the snapshot taken when the hold was added.
type Hold struct {
	Key        string          `json:"key"`
	SeatID     uint64          `json:"seat_id"`
	ShowingID  uint64          `json:"showing_id"`
	Date       time.Time       `json:"date"`
	HallID     uint64          `json:"hall_id"`
	Row        int             `json:"row"`
	Number     int             `json:"number"`
	CategoryID uint64          `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Ledger maps hold keys to holds. AddedAt is stamped when the first hold
// goes into an empty ledger and is the single expiry clock for all holds.
type Ledger struct {
	AddedAt time.Time       `json:"added_at"`
	Holds   map[string]Hold `json:"holds"`
}

// Key builds the composite key of a hold.
func Key(seatID, showingID uint64, date time.Time) string {
	return fmt.Sprintf("%d_%d_%s", seatID, showingID, date.Format("2006-01-02"))
}

// Empty reports whether the ledger holds nothing.
func (l Ledger) Empty() bool { return len(l.Holds) == 0 }

// Expired reports whether more than ttl has passed since AddedAt.
func (l Ledger) Expired(now time.Time, ttl time.Duration) bool {
	return !l.AddedAt.IsZero() && now.Sub(l.AddedAt) > ttl
}

// Remaining returns how long the ledger has left to live.
func (l Ledger) Remaining(now time.Time, ttl time.Duration) time.Duration {
	if l.AddedAt.IsZero() {
		return ttl
	}
	return ttl - now.Sub(l.AddedAt)
}

// Get returns the hold stored under key.
func (l Ledger) Get(key string) (Hold, bool) {
	h, ok := l.Holds[key]
	return h, ok
}

// Put stores h under h.Key unless a hold with that key already exists,
// in which case the stored hold is returned and added is false.
func (l *Ledger) Put(h Hold, now time.Time) (stored Hold, added bool) {
	if existing, ok := l.Holds[h.Key]; ok {
		return existing, false
	}
	if l.Holds == nil {
		l.Holds = make(map[string]Hold)
	}
	if l.AddedAt.IsZero() {
		l.AddedAt = now
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	l.Holds[h.Key] = h
	return h, true
}

// Remove deletes the hold under key and reports whether it existed.
func (l *Ledger) Remove(key string) bool {
	if _, ok := l.Holds[key]; !ok {
		return false
	}
	delete(l.Holds, key)
	return true
}

// Total sums the snapshot prices.
func (l Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, h := range l.Holds {
		total = total.Add(h.Price)
	}
	return total
}

// Items returns the holds ordered by creation time, then key.
func (l Ledger) Items() []Hold {
	out := make([]Hold, 0, len(l.Holds))
	for _, h := range l.Holds {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out
}
