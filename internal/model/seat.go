package model

import "time"

// Seat describes a physical seat in a hall.  Seats are uniquely
// identified by their hall, row and number; re-submitting the same
// position only changes its category.
//
// Fields:
//  ID         – primary key identifier.
//  HallID     – hall to which this seat belongs.
//  CategoryID – seat category (pricing tier).
//  Row        – row number, starting at 1.
//  Number     – seat number within the row, starting at 1.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    `json:"id"`          // seats.id
	HallID     uint64    `json:"hall_id"`     // seats.hall_id
	CategoryID uint64    `json:"category_id"` // seats.category_id
	Row        int       `json:"row"`         // seats.row_no
	Number     int       `json:"number"`      // seats.number
	CreatedAt  time.Time `json:"created_at"`  // seats.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // seats.updated_at
}

// SeatCategory is a named pricing tier such as "base" or "VIP".
type SeatCategory struct {
	ID        uint64    `json:"id"`         // seat_categories.id
	Name      string    `json:"name"`       // seat_categories.name
	Color     string    `json:"color"`      // seat_categories.color
	AdminID   uint64    `json:"admin_id"`   // seat_categories.admin_id
	CreatedAt time.Time `json:"created_at"` // seat_categories.created_at
}

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#FFEFEF"

// SeatSnapshot is the (row, number, category name) view of a created seat
// returned by hall activation.
type SeatSnapshot struct {
	Row      int    `json:"row"`
	Number   int    `json:"number"`
	Category string `json:"category"`
}
