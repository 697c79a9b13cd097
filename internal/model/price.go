package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the amount charged for one seat of a category at a showing.
// There is at most one price per (showing, category) pair.
type Price struct {
	ID         uint64          `json:"id"`          // prices.id
	ShowingID  uint64          `json:"showing_id"`  // prices.showing_id
	CategoryID uint64          `json:"category_id"` // prices.category_id
	Amount     decimal.Decimal `json:"amount"`      // prices.amount
	AdminID    uint64          `json:"admin_id"`    // prices.admin_id
	CreatedAt  time.Time       `json:"created_at"`  // prices.created_at
	UpdatedAt  time.Time       `json:"updated_at"`  // prices.updated_at
}
