package model

import "time"

// Hall represents a screening hall.  A hall declares its capacity up
// front (QuantityRows, QuantitySeats) and is created inactive; seats are
// added incrementally and the hall may only be activated once the number
// of seat rows in the database equals QuantitySeats.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – unique hall name.
//  Description   – optional description of the hall.
//  QuantityRows  – declared number of seating rows.
//  QuantitySeats – declared total number of seats.
//  IsActive      – whether the hall may host showings.
//  AdminID       – user who last changed the hall.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Hall struct {
	ID            uint64    `json:"id"`             // halls.id
	Name          string    `json:"name"`           // halls.name
	Description   string    `json:"description"`    // halls.description
	QuantityRows  int       `json:"quantity_rows"`  // halls.quantity_rows
	QuantitySeats int       `json:"quantity_seats"` // halls.quantity_seats
	IsActive      bool      `json:"is_active"`      // halls.is_active
	AdminID       uint64    `json:"admin_id"`       // halls.admin_id
	CreatedAt     time.Time `json:"created_at"`     // halls.created_at
	UpdatedAt     time.Time `json:"updated_at"`     // halls.updated_at
}

// Actor identifies the staff user on whose behalf a mutating operation
// runs.  It is stamped into the admin_id column of the affected rows.
type Actor struct {
	UserID uint64
}
