package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-showtimes/internal/handler"
	"github.com/iliyamo/cinema-showtimes/internal/middleware"
	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Catalog ----
	g.POST("/films", h.CreateFilm)
	g.PATCH("/films/:id", h.UpdateFilm)
	g.POST("/categories", h.CreateCategory)

	// ---- Halls ----
	g.POST("/halls", h.CreateHall)
	g.PUT("/halls/:id/seats", h.UpsertSeats)
	g.POST("/halls/:id/activate", h.ActivateHall)
	g.POST("/halls/:id/deactivate", h.DeactivateHall)
	g.GET("/halls/:id/categories", h.HallCategories)

	// ---- Schedule ----
	g.POST("/templates", h.CreateTemplate)
	g.PUT("/templates/:id", h.UpdateTemplate)
	g.POST("/showings", h.CreateShowing)
	g.PUT("/showings/:id", h.UpdateShowing)
	g.PUT("/showings/:id/prices", h.SetPrice)
	g.POST("/showings/:id/activate", h.ActivateShowing)
}
