package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// ErrHallNameTaken is returned when a hall name is already in use.
var ErrHallNameTaken = errors.New("hall name already exists")

const hallColumns = `id, name, COALESCE(description, ''), quantity_rows, quantity_seats, is_active,
	COALESCE(admin_id, 0), created_at, updated_at`

// HallRepo provides methods to create, read and (de)activate halls.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

func scanHall(row interface{ Scan(...any) error }, h *model.Hall) error {
	return row.Scan(&h.ID, &h.Name, &h.Description, &h.QuantityRows, &h.QuantitySeats, &h.IsActive,
		&h.AdminID, &h.CreatedAt, &h.UpdatedAt)
}

// Create inserts a new, inactive hall and reads it back so that the
// timestamps are filled in.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const qInsert = `INSERT INTO halls (name, description, quantity_rows, quantity_seats, is_active, admin_id)
	                 VALUES (?, ?, ?, ?, 0, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, h.Name, h.Description, h.QuantityRows, h.QuantitySeats, h.AdminID)
	if err != nil {
		if isDuplicate(err) {
			return ErrHallNameTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*h = *got
	return nil
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	q := `SELECT ` + hallColumns + ` FROM halls WHERE id = ?`
	var h model.Hall
	if err := scanHall(r.db.QueryRowContext(ctx, q, id), &h); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
	q := `SELECT ` + hallColumns + ` FROM halls ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hall{}
	for rows.Next() {
		var h model.Hall
		if err := scanHall(rows, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SetActive flips the hall's is_active flag.
func (r *HallRepo) SetActive(ctx context.Context, id uint64, active bool, actor model.Actor) error {
	const q = `UPDATE halls SET is_active = ?, admin_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, active, actor.UserID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when nothing changed, so check existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
