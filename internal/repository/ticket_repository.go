package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// TicketRepo reads sold tickets.  Tickets are written by PurchaseRepo.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Exists reports whether the seat is sold for the showing on date.
func (r *TicketRepo) Exists(ctx context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error) {
	return ticketExists(ctx, r.db, showingID, date, seatID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ticketExists(ctx context.Context, q queryRower, showingID uint64, date time.Time, seatID uint64) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE showing_id=? AND date_showing=? AND seat_id=?)`,
		showingID, date, seatID).Scan(&ok)
	return ok, err
}

// ListByUser returns the user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.TicketDetails, error) {
	const q = `SELECT tk.id, tk.purchase_id, tk.showing_id, tk.date_showing, tk.seat_id, tk.price, tk.created_at,
	                  f.title, h.name, st.row_no, st.number, s.time_starts
	           FROM tickets tk
	           JOIN purchases p ON p.id = tk.purchase_id
	           JOIN showings s ON s.id = tk.showing_id
	           JOIN showing_templates t ON t.id = s.template_id
	           JOIN films f ON f.id = t.film_id
	           JOIN halls h ON h.id = t.hall_id
	           JOIN seats st ON st.id = tk.seat_id
	           WHERE p.user_id = ?
	           ORDER BY tk.created_at DESC, tk.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TicketDetails{}
	for rows.Next() {
		var d model.TicketDetails
		if err := rows.Scan(&d.ID, &d.PurchaseID, &d.ShowingID, &d.Date, &d.SeatID, &d.Price, &d.CreatedAt,
			&d.FilmTitle, &d.HallName, &d.Row, &d.Number, &d.TimeStarts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
