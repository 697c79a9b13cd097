package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// Inventory manages the seat map of halls and their activation.
type Inventory struct {
	halls      HallRepository
	seats      SeatRepository
	categories CategoryRepository
	templates  TemplateRepository
	settings
}

// NewInventory builds an Inventory. All repositories must be non-nil.
func NewInventory(halls HallRepository, seats SeatRepository, categories CategoryRepository, templates TemplateRepository, opts ...Option) *Inventory {
	if halls == nil || seats == nil || categories == nil || templates == nil {
		panic("nil repository passed to NewInventory")
	}
	return &Inventory{
		halls:      halls,
		seats:      seats,
		categories: categories,
		templates:  templates,
		settings:   newSettings(opts),
	}
}

// HallActivation reports the outcome of an activation attempt.
type HallActivation struct {
	Success          bool                 `json:"success"`
	MissingSeatCount int                  `json:"missing_seat_count"`
	Seats            []model.SeatSnapshot `json:"seats"`
}

func (s *Inventory) hall(ctx context.Context, id uint64) (*model.Hall, error) {
	h, err := s.halls.GetByID(ctx, id)
	if errors.Is(err, repository.ErrHallNotFound) {
		return nil, notFound("hall", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load hall %d: %w", id, err)
	}
	return h, nil
}

// CreateOrUpdateSeats makes every seat numberStart..numberEnd of row in
// the hall belong to the category, creating missing seats and
// re-categorising existing ones. Applying the same call twice leaves the
// hall unchanged.
func (s *Inventory) CreateOrUpdateSeats(ctx context.Context, actor model.Actor, hallID, categoryID uint64, row, numberStart, numberEnd int) error {
	if row < 1 {
		return invalid("row", "must be positive")
	}
	if numberStart < 1 {
		return invalid("number_start", "must be positive")
	}
	if numberEnd < numberStart {
		return invalid("number_end", "must not be less than number_start")
	}
	h, err := s.hall(ctx, hallID)
	if err != nil {
		return err
	}
	if h.QuantityRows > 0 && row > h.QuantityRows {
		return invalid("row", fmt.Sprintf("hall has %d rows", h.QuantityRows))
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return notFound("seat category", categoryID)
		}
		return fmt.Errorf("load seat category %d: %w", categoryID, err)
	}
	if err := s.seats.UpsertRange(ctx, hallID, categoryID, row, numberStart, numberEnd); err != nil {
		return fmt.Errorf("upsert seats: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"hall_id":     hallID,
		"category_id": categoryID,
		"row":         row,
		"from":        numberStart,
		"to":          numberEnd,
		"admin_id":    actor.UserID,
	}).Info("seats created or updated")
	return nil
}

// AllSeatsCreated reports whether the hall has exactly its declared
// number of seats.
func (s *Inventory) AllSeatsCreated(ctx context.Context, hallID uint64) (bool, error) {
	h, err := s.hall(ctx, hallID)
	if err != nil {
		return false, err
	}
	n, err := s.seats.CountByHall(ctx, hallID)
	if err != nil {
		return false, fmt.Errorf("count seats: %w", err)
	}
	return n == h.QuantitySeats, nil
}

// ActivateHall activates the hall once all its seats exist. It never
// fails because seats are missing; the report says how many are left.
// Calling it again on an active hall reports success without side
// effects.
func (s *Inventory) ActivateHall(ctx context.Context, actor model.Actor, hallID uint64) (*HallActivation, error) {
	h, err := s.hall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	n, err := s.seats.CountByHall(ctx, hallID)
	if err != nil {
		return nil, fmt.Errorf("count seats: %w", err)
	}
	missing := h.QuantitySeats - n
	if missing == 0 && !h.IsActive {
		if err := s.halls.SetActive(ctx, hallID, true, actor); err != nil {
			return nil, fmt.Errorf("activate hall: %w", err)
		}
		h.IsActive = true
		s.log.WithFields(logrus.Fields{"hall_id": hallID, "admin_id": actor.UserID}).Info("hall activated")
	}
	snapshot, err := s.seats.SnapshotByHall(ctx, hallID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	return &HallActivation{
		Success:          h.IsActive,
		MissingSeatCount: missing,
		Seats:            snapshot,
	}, nil
}

// DeactivateHall takes the hall out of service. It is refused while any
// template in the hall runs today or later.
func (s *Inventory) DeactivateHall(ctx context.Context, actor model.Actor, hallID uint64) error {
	h, err := s.hall(ctx, hallID)
	if err != nil {
		return err
	}
	if !h.IsActive {
		return nil
	}
	today, _ := s.today()
	n, err := s.templates.CountByHallEndingFrom(ctx, hallID, today)
	if err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if n > 0 {
		return &StateError{Problems: []string{fmt.Sprintf("hall has %d showing templates that have not ended", n)}}
	}
	if err := s.halls.SetActive(ctx, hallID, false, actor); err != nil {
		return fmt.Errorf("deactivate hall: %w", err)
	}
	s.log.WithFields(logrus.Fields{"hall_id": hallID, "admin_id": actor.UserID}).Info("hall deactivated")
	return nil
}

// SeatCategoriesInUse returns the distinct categories of the hall's seats.
func (s *Inventory) SeatCategoriesInUse(ctx context.Context, hallID uint64) ([]model.SeatCategory, error) {
	if _, err := s.hall(ctx, hallID); err != nil {
		return nil, err
	}
	cats, err := s.seats.CategoriesInHall(ctx, hallID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
