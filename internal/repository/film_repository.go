package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrFilmNotFound is returned when a film lookup fails.
var ErrFilmNotFound = errors.New("film not found")

// FilmRepo stores films.
type FilmRepo struct{ db *sql.DB }

func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

// Create inserts an active film.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO films (title, duration, description, is_active, admin_id) VALUES (?,?,?,1,?)",
		f.Title, f.Duration, f.Description, f.AdminID)
	if err != nil {
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
	*f = *got
	return nil
}

// GetByID fetches a film by id.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	var f model.Film
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, duration, COALESCE(description, ''), is_active, COALESCE(admin_id, 0), created_at, updated_at
		 FROM films WHERE id=?`, id).
		Scan(&f.ID, &f.Title, &f.Duration, &f.Description, &f.IsActive, &f.AdminID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFilmNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Update writes title, description and is_active.  The duration is fixed
// once showings depend on it.
func (r *FilmRepo) Update(ctx context.Context, f *model.Film) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE films SET title=?, description=?, is_active=?, admin_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		f.Title, f.Description, f.IsActive, f.AdminID, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}
