package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ErrTemplateNotFound is returned when a showing template lookup fails.
var ErrTemplateNotFound = errors.New("showing template not found")

const templateColumns = `id, film_id, hall_id, date_starts, date_ends, COALESCE(admin_id, 0), created_at, updated_at`

// TemplateRepo reads showing templates.  Writes go through ScheduleRepo
// so they happen under the hall lock.
type TemplateRepo struct{ db *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

func scanTemplate(row interface{ Scan(...any) error }, t *model.ShowingTemplate) error {
	return row.Scan(&t.ID, &t.FilmID, &t.HallID, &t.DateStarts, &t.DateEnds, &t.AdminID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID fetches a template by id.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.ShowingTemplate, error) {
	var t model.ShowingTemplate
	err := scanTemplate(r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM showing_templates WHERE id=?`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountByHallEndingFrom counts the hall's templates whose last day is on
// or after date.
func (r *TemplateRepo) CountByHallEndingFrom(ctx context.Context, hallID uint64, date time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM showing_templates WHERE hall_id=? AND date_ends >= ?`,
		hallID, date).Scan(&n)
	return n, err
}
