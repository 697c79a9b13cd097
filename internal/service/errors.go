package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// Error classes. Every error returned by the services wraps one of these
// so handlers can pick a status code with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrState             = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TemplateConflictError lists the templates a new or edited template
// overlaps.
type TemplateConflictError struct {
	Templates []model.ShowingTemplate
}

func (e *TemplateConflictError) Error() string {
	ids := make([]string, 0, len(e.Templates))
	for _, t := range e.Templates {
		ids = append(ids, fmt.Sprint(t.ID))
	}
	return "template overlaps existing templates: " + strings.Join(ids, ", ")
}

func (e *TemplateConflictError) Unwrap() error { return ErrConflict }

// ShowingConflictError lists the showings a new or edited showing
// overlaps in its hall.
type ShowingConflictError struct {
	Showings []model.ShowingDetails
}

func (e *ShowingConflictError) Error() string {
	parts := make([]string, 0, len(e.Showings))
	for _, s := range e.Showings {
		parts = append(parts, fmt.Sprintf("%d (%s-%s)", s.ID, s.TimeStarts, s.TimeHallFree))
	}
	return "showing overlaps existing showings: " + strings.Join(parts, ", ")
}

func (e *ShowingConflictError) Unwrap() error { return ErrConflict }

// StateError carries every violated precondition of a state change.
type StateError struct {
	Problems []string
}

func (e *StateError) Error() string { return strings.Join(e.Problems, "; ") }

func (e *StateError) Unwrap() error { return ErrState }

// Hold rules, reported in validation order.
const (
	RuleSeatNotFound    = "seat_not_found"
	RuleShowingNotFound = "showing_not_found"
	RuleHallMismatch    = "hall_mismatch"
	RuleNotInRun        = "showing_not_in_run"
	RuleDateOutOfRange  = "date_out_of_range"
	RuleAlreadySold     = "already_sold"
	RulePriceMissing    = "price_missing"
)

// HoldError reports the first rule a hold request violated.
type HoldError struct {
	Rule    string
	Message string
}

func (e *HoldError) Error() string { return e.Message }

func (e *HoldError) Unwrap() error {
	switch e.Rule {
	case RuleSeatNotFound, RuleShowingNotFound:
		return ErrNotFound
	case RuleAlreadySold:
		return ErrConflict
	}
	return ErrValidation
}

// Purchase failure reasons.
const (
	ReasonEmpty             = "empty"
	ReasonExpired           = "expired"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonSeatsSold         = "seats_sold"
)

// PurchaseError is returned when a purchase is rejected as a whole.
type PurchaseError struct {
	Reason string
	// Seats holds the basket keys that were found sold, for seats_sold.
	Seats []string
}

func (e *PurchaseError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "nothing to purchase"
	case ReasonExpired:
		return "basket expired"
	case ReasonInsufficientFunds:
		return "not enough money on balance"
	case ReasonSeatsSold:
		return "some seats were already sold"
	}
	return "purchase rejected: " + e.Reason
}

func (e *PurchaseError) Unwrap() error {
	switch e.Reason {
	case ReasonInsufficientFunds:
		return ErrInsufficientFunds
	case ReasonSeatsSold:
		return ErrConflict
	}
	return ErrValidation
}
