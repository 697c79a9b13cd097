package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// Activation moves showings from draft to active and manages their
// prices.
type Activation struct {
	showings   ShowingRepository
	seats      SeatRepository
	prices     PriceRepository
	categories CategoryRepository
	settings
}

// NewActivation builds an Activation service.
func NewActivation(showings ShowingRepository, seats SeatRepository, prices PriceRepository, categories CategoryRepository, opts ...Option) *Activation {
	if showings == nil || seats == nil || prices == nil || categories == nil {
		panic("nil repository passed to NewActivation")
	}
	return &Activation{
		showings:   showings,
		seats:      seats,
		prices:     prices,
		categories: categories,
		settings:   newSettings(opts),
	}
}

// ActivationReport lists every reason a showing could not be activated.
type ActivationReport struct {
	Success           bool                 `json:"success"`
	Errors            []string             `json:"errors"`
	MissingCategories []model.SeatCategory `json:"missing_categories"`
}

// ActivateShowing activates the showing when its template has not ended,
// its hall and film are active and every seat category of the hall has
// a price. Otherwise the showing stays a draft and the report lists all
// failed conditions. Retrying after fixing them is safe.
func (s *Activation) ActivateShowing(ctx context.Context, actor model.Actor, showingID uint64) (*ActivationReport, error) {
	d, err := s.showing(ctx, showingID)
	if err != nil {
		return nil, err
	}
	today, _ := s.today()
	report := &ActivationReport{Errors: []string{}, MissingCategories: []model.SeatCategory{}}

	if d.DateEnds.Before(today) {
		report.Errors = append(report.Errors, fmt.Sprintf("template date range ended on %s", d.DateEnds.Format(clock.DateLayout)))
	}
	if !d.HallActive {
		report.Errors = append(report.Errors, fmt.Sprintf("hall %q is not active", d.HallName))
	}
	if !d.FilmActive {
		report.Errors = append(report.Errors, fmt.Sprintf("film %q is not active", d.FilmTitle))
	}

	cats, err := s.seats.CategoriesInHall(ctx, d.HallID)
	if err != nil {
		return nil, fmt.Errorf("list hall categories: %w", err)
	}
	priced, err := s.prices.CategoryIDs(ctx, showingID)
	if err != nil {
		return nil, fmt.Errorf("list priced categories: %w", err)
	}
	have := make(map[uint64]bool, len(priced))
	for _, id := range priced {
		have[id] = true
	}
	for _, c := range cats {
		if !have[c.ID] {
			report.MissingCategories = append(report.MissingCategories, c)
			report.Errors = append(report.Errors, fmt.Sprintf("there is no price for seat category %q", c.Name))
		}
	}

	fields := logrus.Fields{"showing_id": showingID, "admin_id": actor.UserID}
	if len(report.Errors) > 0 {
		s.log.WithFields(fields).WithField("problems", len(report.Errors)).Info("showing activation refused")
		return report, nil
	}
	if !d.IsActive {
		if err := s.showings.SetActive(ctx, showingID, true, actor); err != nil {
			return nil, fmt.Errorf("activate showing: %w", err)
		}
		s.log.WithFields(fields).Info("showing activated")
	}
	report.Success = true
	return report, nil
}

// SetPrice sets the price of one seat category at a showing.
func (s *Activation) SetPrice(ctx context.Context, actor model.Actor, showingID, categoryID uint64, amount decimal.Decimal) (*model.Price, error) {
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be positive")
	}
	if _, err := s.showing(ctx, showingID); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFound("seat category", categoryID)
		}
		return nil, fmt.Errorf("load seat category %d: %w", categoryID, err)
	}
	p := &model.Price{
		ShowingID:  showingID,
		CategoryID: categoryID,
		Amount:     amount,
		AdminID:    actor.UserID,
	}
	if err := s.prices.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save price: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"showing_id":  showingID,
		"category_id": categoryID,
		"amount":      amount.String(),
	}).Info("price set")
	return p, nil
}

func (s *Activation) showing(ctx context.Context, id uint64) (*model.ShowingDetails, error) {
	d, err := s.showings.GetDetails(ctx, id)
	if errors.Is(err, repository.ErrShowingNotFound) {
		return nil, notFound("showing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load showing %d: %w", id, err)
	}
	return d, nil
}
