package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
	"github.com/iliyamo/cinema-showtimes/internal/service"
)

// Inventory manages hall seats and hall activation.
type Inventory interface {
	CreateOrUpdateSeats(ctx context.Context, actor model.Actor, hallID, categoryID uint64, row, numberStart, numberEnd int) error
	ActivateHall(ctx context.Context, actor model.Actor, hallID uint64) (*service.HallActivation, error)
	DeactivateHall(ctx context.Context, actor model.Actor, hallID uint64) error
	SeatCategoriesInUse(ctx context.Context, hallID uint64) ([]model.SeatCategory, error)
}

// Scheduling places templates and showings.
type Scheduling interface {
	ScheduleTemplate(ctx context.Context, actor model.Actor, filmID, hallID uint64, dateStarts time.Time, dateEnds *time.Time) (*model.ShowingTemplate, error)
	UpdateTemplate(ctx context.Context, actor model.Actor, templateID uint64, dateStarts, dateEnds time.Time) (*model.ShowingTemplate, error)
	ScheduleShowing(ctx context.Context, actor model.Actor, templateID uint64, in service.ShowingInput) (*model.ShowingDetails, error)
	UpdateShowing(ctx context.Context, actor model.Actor, showingID uint64, in service.ShowingInput) (*model.ShowingDetails, error)
}

// Activation activates showings and sets their prices.
type Activation interface {
	ActivateShowing(ctx context.Context, actor model.Actor, showingID uint64) (*service.ActivationReport, error)
	SetPrice(ctx context.Context, actor model.Actor, showingID, categoryID uint64, amount decimal.Decimal) (*model.Price, error)
}

// FilmStore persists films.
type FilmStore interface {
	Create(ctx context.Context, f *model.Film) error
	GetByID(ctx context.Context, id uint64) (*model.Film, error)
	Update(ctx context.Context, f *model.Film) error
}

// CategoryStore persists seat categories.
type CategoryStore interface {
	Create(ctx context.Context, c *model.SeatCategory) error
}

// HallStore persists halls.
type HallStore interface {
	Create(ctx context.Context, h *model.Hall) error
}

// AdminHandler serves the staff API.
type AdminHandler struct {
	Films      FilmStore
	Categories CategoryStore
	Halls      HallStore
	Inventory  Inventory
	Scheduling Scheduling
	Activation Activation
}

// NewAdminHandler panics if any dependency is nil.
func NewAdminHandler(films FilmStore, categories CategoryStore, halls HallStore, inv Inventory, sch Scheduling, act Activation) *AdminHandler {
	if films == nil || categories == nil || halls == nil || inv == nil || sch == nil || act == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Films: films, Categories: categories, Halls: halls, Inventory: inv, Scheduling: sch, Activation: act}
}

// ---- Films ----

type filmReq struct {
	Title       string         `json:"title"`
	Duration    clock.Duration `json:"duration"`
	Description string         `json:"description"`
}

type filmPatchReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (h *AdminHandler) CreateFilm(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req filmReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Duration.InMinutes() <= 0 {
		return badRequest(c, "title and a positive duration are required")
	}
	f := &model.Film{Title: req.Title, Duration: req.Duration, Description: req.Description, AdminID: a.UserID}
	if err := h.Films.Create(c.Request().Context(), f); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// UpdateFilm changes title, description or the active flag.
func (h *AdminHandler) UpdateFilm(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid film id")
	}
	var req filmPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx := c.Request().Context()
	f, err := h.Films.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFilmNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
	}
	if err != nil {
		return respondError(c, err)
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return badRequest(c, "title must not be empty")
		}
		f.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	f.AdminID = a.UserID
	if err := h.Films.Update(ctx, f); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// ---- Categories and halls ----

type categoryReq struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}
	cat := &model.SeatCategory{Name: strings.TrimSpace(req.Name), Color: strings.TrimSpace(req.Color), AdminID: a.UserID}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

type hallReq struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuantityRows  int    `json:"quantity_rows"`
	QuantitySeats int    `json:"quantity_seats"`
}

// CreateHall registers an inactive hall with its declared capacity.
func (h *AdminHandler) CreateHall(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.QuantityRows < 1 || req.QuantitySeats < req.QuantityRows {
		return badRequest(c, "name, quantity_rows >= 1 and quantity_seats >= quantity_rows required")
	}
	hall := &model.Hall{
		Name:          req.Name,
		Description:   req.Description,
		QuantityRows:  req.QuantityRows,
		QuantitySeats: req.QuantitySeats,
		AdminID:       a.UserID,
	}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		if errors.Is(err, repository.ErrHallNameTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, hall)
}

type seatsReq struct {
	CategoryID  uint64 `json:"category_id"`
	Row         int    `json:"row"`
	NumberStart int    `json:"number_start"`
	NumberEnd   int    `json:"number_end"`
}

// UpsertSeats creates or re-categorizes a run of seats in one row.
func (h *AdminHandler) UpsertSeats(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	hallID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hall id")
	}
	var req seatsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Inventory.CreateOrUpdateSeats(c.Request().Context(), a, hallID, req.CategoryID, req.Row, req.NumberStart, req.NumberEnd); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ActivateHall always answers 200; the body says whether seats are
// missing.
func (h *AdminHandler) ActivateHall(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	hallID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hall id")
	}
	res, err := h.Inventory.ActivateHall(c.Request().Context(), a, hallID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeactivateHall(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	hallID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hall id")
	}
	if err := h.Inventory.DeactivateHall(c.Request().Context(), a, hallID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) HallCategories(c echo.Context) error {
	hallID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid hall id")
	}
	cats, err := h.Inventory.SeatCategoriesInUse(c.Request().Context(), hallID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

// ---- Templates ----

type templateReq struct {
	FilmID     uint64 `json:"film_id"`
	HallID     uint64 `json:"hall_id"`
	DateStarts string `json:"date_starts"`
	DateEnds   string `json:"date_ends"`
}

func (h *AdminHandler) CreateTemplate(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	starts, err := clock.ParseDate(req.DateStarts)
	if err != nil {
		return badRequest(c, "date_starts must be YYYY-MM-DD")
	}
	var ends *time.Time
	if req.DateEnds != "" {
		d, err := clock.ParseDate(req.DateEnds)
		if err != nil {
			return badRequest(c, "date_ends must be YYYY-MM-DD")
		}
		ends = &d
	}
	t, err := h.Scheduling.ScheduleTemplate(c.Request().Context(), a, req.FilmID, req.HallID, starts, ends)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *AdminHandler) UpdateTemplate(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid template id")
	}
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	starts, err1 := clock.ParseDate(req.DateStarts)
	ends, err2 := clock.ParseDate(req.DateEnds)
	if err1 != nil || err2 != nil {
		return badRequest(c, "date_starts and date_ends must be YYYY-MM-DD")
	}
	t, err := h.Scheduling.UpdateTemplate(c.Request().Context(), a, id, starts, ends)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// ---- Showings ----

type showingReq struct {
	TemplateID  uint64           `json:"template_id"`
	TimeStarts  *clock.TimeOfDay `json:"time_starts"`
	Ads         *clock.Duration  `json:"ads_duration"`
	Cleaning    *clock.Duration  `json:"cleaning_duration"`
	Description *string          `json:"description"`
}

func (r showingReq) input() service.ShowingInput {
	return service.ShowingInput{TimeStarts: *r.TimeStarts, Ads: r.Ads, Cleaning: r.Cleaning, Description: r.Description}
}

func (h *AdminHandler) CreateShowing(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req showingReq
	if err := c.Bind(&req); err != nil || req.TimeStarts == nil {
		return badRequest(c, "template_id and time_starts (HH:MM) required")
	}
	d, err := h.Scheduling.ScheduleShowing(c.Request().Context(), a, req.TemplateID, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *AdminHandler) UpdateShowing(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showing id")
	}
	var req showingReq
	if err := c.Bind(&req); err != nil || req.TimeStarts == nil {
		return badRequest(c, "time_starts (HH:MM) required")
	}
	d, err := h.Scheduling.UpdateShowing(c.Request().Context(), a, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type priceReq struct {
	CategoryID uint64          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func (h *AdminHandler) SetPrice(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showing id")
	}
	var req priceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.Activation.SetPrice(c.Request().Context(), a, id, req.CategoryID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ActivateShowing answers 200 with the report on success and 422 with the
// report listing every problem otherwise.
func (h *AdminHandler) ActivateShowing(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showing id")
	}
	report, err := h.Activation.ActivateShowing(c.Request().Context(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	if !report.Success {
		return c.JSON(http.StatusUnprocessableEntity, report)
	}
	return c.JSON(http.StatusOK, report)
}
