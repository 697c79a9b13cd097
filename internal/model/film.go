package model

import (
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

// Film is a movie that can be scheduled into halls.  Duration is the
// running time without advertisements; showings derive their end time
// from it.
type Film struct {
	ID          uint64         `json:"id"`          // films.id
	Title       string         `json:"title"`       // films.title
	Duration    clock.Duration `json:"duration"`    // films.duration (TIME)
	Description string         `json:"description"` // films.description
	IsActive    bool           `json:"is_active"`   // films.is_active
	AdminID     uint64         `json:"admin_id"`    // films.admin_id
	CreatedAt   time.Time      `json:"created_at"`  // films.created_at
	UpdatedAt   time.Time      `json:"updated_at"`  // films.updated_at
}
