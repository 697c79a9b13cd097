package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrPriceNotFound is returned when a category has no price at a showing.
var ErrPriceNotFound = errors.New("price not found")

// PriceRepo stores per-category prices of showings.
type PriceRepo struct{ db *sql.DB }

func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// Get returns the price of categoryID at showingID.
func (r *PriceRepo) Get(ctx context.Context, showingID, categoryID uint64) (*model.Price, error) {
	var p model.Price
	err := r.db.QueryRowContext(ctx,
		`SELECT id, showing_id, category_id, amount, COALESCE(admin_id, 0), created_at, updated_at
		 FROM prices WHERE showing_id=? AND category_id=?`,
		showingID, categoryID).
		Scan(&p.ID, &p.ShowingID, &p.CategoryID, &p.Amount, &p.AdminID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates the price or replaces its amount.
func (r *PriceRepo) Upsert(ctx context.Context, p *model.Price) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO prices (showing_id, category_id, amount, admin_id) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE amount = VALUES(amount), admin_id = VALUES(admin_id), updated_at = CURRENT_TIMESTAMP`,
		p.ShowingID, p.CategoryID, p.Amount, p.AdminID)
	if err != nil {
		return err
	}
	got, err := r.Get(ctx, p.ShowingID, p.CategoryID)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// CategoryIDs returns the categories priced at the showing.
func (r *PriceRepo) CategoryIDs(ctx context.Context, showingID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id FROM prices WHERE showing_id=?`, showingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
