package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/middleware"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/service"
)

// BasketService manages the session ledger.
type BasketService interface {
	TTL() time.Duration
	Get(ctx context.Context, session string) (basket.Ledger, error)
	Add(ctx context.Context, session string, seatID, showingID uint64, date time.Time) (basket.Hold, error)
	Remove(ctx context.Context, session, key string) (bool, error)
}

// PurchaseService buys the ledger and lists tickets.
type PurchaseService interface {
	Purchase(ctx context.Context, userID uint64, session string) (*service.Receipt, error)
	History(ctx context.Context, userID uint64) ([]model.TicketDetails, error)
}

// CustomerHandler serves the basket and purchase endpoints.
type CustomerHandler struct {
	Baskets   BasketService
	Purchases PurchaseService
}

func NewCustomerHandler(b BasketService, p PurchaseService) *CustomerHandler {
	if b == nil || p == nil {
		panic("nil service passed to NewCustomerHandler")
	}
	return &CustomerHandler{Baskets: b, Purchases: p}
}

type basketResp struct {
	Items     []basket.Hold   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

func (h *CustomerHandler) basketView(l basket.Ledger) basketResp {
	resp := basketResp{Items: l.Items(), Total: l.Total()}
	if !l.Empty() {
		exp := l.AddedAt.Add(h.Baskets.TTL())
		resp.ExpiresAt = &exp
	}
	return resp
}

// GetBasket returns the holds of the session's ledger.
func (h *CustomerHandler) GetBasket(c echo.Context) error {
	l, err := h.Baskets.Get(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.basketView(l))
}

type holdReq struct {
	SeatID    uint64 `json:"seat_id"`
	ShowingID uint64 `json:"showing_id"`
	Date      string `json:"date"`
}

// AddItem holds a seat; the response is the stored hold.
func (h *CustomerHandler) AddItem(c echo.Context) error {
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	date, err := clock.ParseDate(req.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	hold, err := h.Baskets.Add(c.Request().Context(), middleware.SessionID(c), req.SeatID, req.ShowingID, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, hold)
}

func (h *CustomerHandler) RemoveItem(c echo.Context) error {
	removed, err := h.Baskets.Remove(c.Request().Context(), middleware.SessionID(c), c.Param("key"))
	if err != nil {
		return respondError(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not in basket"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Purchase buys everything in the basket for the caller.
func (h *CustomerHandler) Purchase(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	receipt, err := h.Purchases.Purchase(c.Request().Context(), uid, middleware.SessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *CustomerHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	list, err := h.Purchases.History(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
