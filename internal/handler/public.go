package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// BoardReader lists what is on sale.
type BoardReader interface {
	List(ctx context.Context, date time.Time, order string) ([]repository.BoardEntry, error)
	Showing(ctx context.Context, id uint64) (*model.ShowingDetails, error)
	SeatMap(ctx context.Context, showingID uint64, date time.Time) ([]repository.SeatState, error)
}

// HallSeats lists the seats of a hall.
type HallSeats interface {
	ListByHall(ctx context.Context, hallID uint64) ([]model.Seat, error)
}

// PublicHandler serves guest browsing endpoints.
type PublicHandler struct {
	Board BoardReader
	Seats HallSeats
}

func NewPublicHandler(board BoardReader, seats HallSeats) *PublicHandler {
	return &PublicHandler{Board: board, Seats: seats}
}

// ListShowings handles GET /v1/showings?date=YYYY-MM-DD&order=time|cheap|expensive.
func (h *PublicHandler) ListShowings(c echo.Context) error {
	date, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	list, err := h.Board.List(c.Request().Context(), date, c.QueryParam("order"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PublicHandler) GetShowing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showing id")
	}
	d, err := h.Board.Showing(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !d.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
	}
	return c.JSON(http.StatusOK, d)
}

// ShowingSeats handles GET /v1/showings/:id/seats?date=YYYY-MM-DD.
func (h *PublicHandler) ShowingSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showing id")
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	seats, err := h.Board.SeatMap(c.Request().Context(), id, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

func (h *PublicHandler) HallSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hall id")
	}
	seats, err := h.Seats.ListByHall(c.Request().Context(), id)
	if errors.Is(err, repository.ErrHallNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}
