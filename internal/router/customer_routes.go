package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-showtimes/internal/handler"
	"github.com/iliyamo/cinema-showtimes/internal/middleware"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// RegisterCustomer registers the basket and purchase endpoints.  They need
// a CUSTOMER token; basketSession attaches the ledger session cookie.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, basketSession, rateLimit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
		basketSession,
	)
	g.GET("/basket", h.GetBasket)
	g.POST("/basket/items", h.AddItem, rateLimit)
	g.DELETE("/basket/items/:key", h.RemoveItem)
	g.POST("/purchases", h.Purchase, rateLimit)
	g.GET("/purchases", h.History)
}
