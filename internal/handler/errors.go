package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-showtimes/internal/service"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrState):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes a service error.  Unclassified errors become a 500
// whose cause is picked up by the request logger.
func respondError(c echo.Context, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal error").SetInternal(err)
	}
	body := echo.Map{"error": err.Error()}

	var (
		hold *service.HoldError
		pe   *service.PurchaseError
		ve   *service.ValidationError
		tc   *service.TemplateConflictError
		sc   *service.ShowingConflictError
		se   *service.StateError
	)
	switch {
	case errors.As(err, &hold):
		body["rule"] = hold.Rule
	case errors.As(err, &pe):
		body["reason"] = pe.Reason
		if len(pe.Seats) > 0 {
			body["seats"] = pe.Seats
		}
	case errors.As(err, &ve):
		body["field"] = ve.Field
	case errors.As(err, &tc):
		body["templates"] = tc.Templates
	case errors.As(err, &sc):
		body["showings"] = sc.Showings
	case errors.As(err, &se):
		body["problems"] = se.Problems
	}
	return c.JSON(status, body)
}
