package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// GetByID fetches a single seat.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, hall_id, category_id, row_no, number, created_at, updated_at FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.HallID, &s.CategoryID, &s.Row, &s.Number, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertRange makes seats from..to of row exist with the given category in
// a single statement.  Existing positions only have their category
// updated, so repeating a call is a no-op.
func (r *SeatRepo) UpsertRange(ctx context.Context, hallID, categoryID uint64, row, from, to int) error {
	if to < from {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (hall_id, category_id, row_no, number) VALUES `)
	args := make([]any, 0, (to-from+1)*4)
	for n := from; n <= to; n++ {
		if n > from {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, hallID, categoryID, row, n)
	}
	b.WriteString(` ON DUPLICATE KEY UPDATE category_id = VALUES(category_id), updated_at = CURRENT_TIMESTAMP`)
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// CountByHall returns the number of seats created in the hall.
func (r *SeatRepo) CountByHall(ctx context.Context, hallID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE hall_id = ?`, hallID).Scan(&n)
	return n, err
}

// ListByHall returns the hall's seats ordered by row then number.
func (r *SeatRepo) ListByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	const q = `SELECT id, hall_id, category_id, row_no, number, created_at, updated_at
	           FROM seats
	           WHERE hall_id = ?
	           ORDER BY row_no, number`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.CategoryID, &s.Row, &s.Number, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SnapshotByHall returns (row, number, category name) for every seat.
func (r *SeatRepo) SnapshotByHall(ctx context.Context, hallID uint64) ([]model.SeatSnapshot, error) {
	const q = `SELECT s.row_no, s.number, c.name
	           FROM seats s
	           JOIN seat_categories c ON c.id = s.category_id
	           WHERE s.hall_id = ?
	           ORDER BY s.row_no, s.number`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatSnapshot{}
	for rows.Next() {
		var s model.SeatSnapshot
		if err := rows.Scan(&s.Row, &s.Number, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CategoriesInHall returns the distinct categories of the hall's seats.
func (r *SeatRepo) CategoriesInHall(ctx context.Context, hallID uint64) ([]model.SeatCategory, error) {
	const q = `SELECT DISTINCT c.id, c.name, c.color, COALESCE(c.admin_id, 0), c.created_at
	           FROM seat_categories c
	           JOIN seats s ON s.category_id = c.id
	           WHERE s.hall_id = ?
	           ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatCategory{}
	for rows.Next() {
		var c model.SeatCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.AdminID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
