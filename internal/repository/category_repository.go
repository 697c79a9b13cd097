package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrCategoryNotFound is returned when a seat category lookup fails.
var ErrCategoryNotFound = errors.New("seat category not found")

// ErrCategoryExists is returned when a category name is already in use.
var ErrCategoryExists = errors.New("seat category already exists")

// CategoryRepo stores seat categories (pricing tiers).
type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category.  An empty color falls back to the default.
func (r *CategoryRepo) Create(ctx context.Context, c *model.SeatCategory) error {
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO seat_categories (name, color, admin_id) VALUES (?,?,?)",
		c.Name, c.Color, c.AdminID)
	if err != nil {
		if isDuplicate(err) {
			return ErrCategoryExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.SeatCategory, error) {
	var c model.SeatCategory
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, color, COALESCE(admin_id, 0), created_at FROM seat_categories WHERE id=?",
		id).Scan(&c.ID, &c.Name, &c.Color, &c.AdminID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.SeatCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color, COALESCE(admin_id, 0), created_at FROM seat_categories ORDER BY name")
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
