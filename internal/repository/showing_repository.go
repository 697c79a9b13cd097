package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrShowingNotFound is returned when a showing lookup fails.
var ErrShowingNotFound = errors.New("showing not found")

const showingDetailColumns = `s.id, s.template_id, s.time_starts, s.time_ends, s.time_hall_free,
	s.ads_duration, s.cleaning_duration, COALESCE(s.description, ''), s.is_active, COALESCE(s.admin_id, 0),
	s.created_at, s.updated_at,
	h.id, h.name, h.is_active, f.id, f.title, f.is_active, t.date_starts, t.date_ends`

const showingDetailJoins = `
	FROM showings s
	JOIN showing_templates t ON t.id = s.template_id
	JOIN halls h ON h.id = t.hall_id
	JOIN films f ON f.id = t.film_id`

func scanShowingDetail(row interface{ Scan(...any) error }, d *model.ShowingDetails) error {
	return row.Scan(&d.ID, &d.TemplateID, &d.TimeStarts, &d.TimeEnds, &d.TimeHallFree,
		&d.AdsDuration, &d.CleaningDuration, &d.Description, &d.IsActive, &d.AdminID,
		&d.CreatedAt, &d.UpdatedAt,
		&d.HallID, &d.HallName, &d.HallActive, &d.FilmID, &d.FilmTitle, &d.FilmActive, &d.DateStarts, &d.DateEnds)
}

func scanShowingDetails(rows *sql.Rows) ([]model.ShowingDetails, error) {
	var out []model.ShowingDetails
	for rows.Next() {
		var d model.ShowingDetails
		if err := scanShowingDetail(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ShowingRepo reads showings joined with their template, hall and film.
type ShowingRepo struct{ db *sql.DB }

func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{db: db} }

// GetDetails fetches one showing with its template, hall and film.
func (r *ShowingRepo) GetDetails(ctx context.Context, id uint64) (*model.ShowingDetails, error) {
	var d model.ShowingDetails
	err := scanShowingDetail(r.db.QueryRowContext(ctx, `SELECT `+showingDetailColumns+showingDetailJoins+` WHERE s.id = ?`, id), &d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SetActive flips the showing's is_active flag.
func (r *ShowingRepo) SetActive(ctx context.Context, id uint64, active bool, actor model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE showings SET is_active=?, admin_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		active, actor.UserID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetDetails(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// BoardEntry is a showing on sale for a date with its cheapest price.
type BoardEntry struct {
	model.ShowingDetails
	MinPrice decimal.Decimal `json:"min_price"`
}

// Board orders.
const (
	BoardByTime         = "time"
	BoardCheapFirst     = "cheap"
	BoardExpensiveFirst = "expensive"
)

// Board lists the active showings in active halls whose template covers
// date, with the cheapest price of each.  Showings without prices are
// left out.
func (r *ShowingRepo) Board(ctx context.Context, date time.Time, order string) ([]BoardEntry, error) {
	orderBy := "s.time_starts, s.id"
	switch order {
	case BoardCheapFirst:
		orderBy = "min_price ASC, s.time_starts, s.id"
	case BoardExpensiveFirst:
		orderBy = "min_price DESC, s.time_starts, s.id"
	}
	q := `SELECT ` + showingDetailColumns + `, MIN(p.amount) AS min_price` + showingDetailJoins + `
		JOIN prices p ON p.showing_id = s.id
		WHERE s.is_active = 1 AND h.is_active = 1 AND t.date_starts <= ? AND t.date_ends >= ?
		GROUP BY s.id
		ORDER BY ` + orderBy
	rows, err := r.db.QueryContext(ctx, q, date, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BoardEntry{}
	for rows.Next() {
		var e BoardEntry
		d := &e.ShowingDetails
		if err := rows.Scan(&d.ID, &d.TemplateID, &d.TimeStarts, &d.TimeEnds, &d.TimeHallFree,
			&d.AdsDuration, &d.CleaningDuration, &d.Description, &d.IsActive, &d.AdminID,
			&d.CreatedAt, &d.UpdatedAt,
			&d.HallID, &d.HallName, &d.HallActive, &d.FilmID, &d.FilmTitle, &d.FilmActive, &d.DateStarts, &d.DateEnds,
			&e.MinPrice); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SeatState is one seat of a showing's hall with its price and whether it
// is sold for the requested date.
type SeatState struct {
	SeatID     uint64           `json:"seat_id"`
	Row        int              `json:"row"`
	Number     int              `json:"number"`
	CategoryID uint64           `json:"category_id"`
	Category   string           `json:"category"`
	Color      string           `json:"color"`
	Price      *decimal.Decimal `json:"price"`
	Sold       bool             `json:"sold"`
}

// SeatMap returns every seat of the showing's hall for date.
func (r *ShowingRepo) SeatMap(ctx context.Context, showingID uint64, date time.Time) ([]SeatState, error) {
	const q = `SELECT st.id, st.row_no, st.number, c.id, c.name, c.color, p.amount,
	                  EXISTS (SELECT 1 FROM tickets tk
	                          WHERE tk.showing_id = s.id AND tk.date_showing = ? AND tk.seat_id = st.id)
	           FROM showings s
	           JOIN showing_templates t ON t.id = s.template_id
	           JOIN seats st ON st.hall_id = t.hall_id
	           JOIN seat_categories c ON c.id = st.category_id
	           LEFT JOIN prices p ON p.showing_id = s.id AND p.category_id = st.category_id
	           WHERE s.id = ?
	           ORDER BY st.row_no, st.number`
	rows, err := r.db.QueryContext(ctx, q, date, showingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SeatState{}
	for rows.Next() {
		var (
			s     SeatState
			price decimal.NullDecimal
		)
		if err := rows.Scan(&s.SeatID, &s.Row, &s.Number, &s.CategoryID, &s.Category, &s.Color, &price, &s.Sold); err != nil {
			return nil, err
		}
		if price.Valid {
			s.Price = &price.Decimal
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
