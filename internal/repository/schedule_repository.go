package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

// ScheduleRepo runs schedule writes for one hall at a time.  InHallTx
// takes a row lock on the hall, so concurrent writers for the same hall
// queue up and each one sees what the previous one committed.
type ScheduleRepo struct{ db *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// InHallTx locks the hall row and runs fn in the same transaction.
func (r *ScheduleRepo) InHallTx(ctx context.Context, hallID uint64, fn func(tx ScheduleTx) error) error {
	return inTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		var id uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM halls WHERE id = ? FOR UPDATE`, hallID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHallNotFound
		}
		if err != nil {
			return err
		}
		return fn(&scheduleTx{tx: tx})
	})
}

type scheduleTx struct{ tx *sql.Tx }

func (s *scheduleTx) TemplatesForFilmInHall(ctx context.Context, filmID, hallID uint64) ([]model.ShowingTemplate, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM showing_templates WHERE film_id=? AND hall_id=? ORDER BY date_starts`,
		filmID, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ShowingTemplate
	for rows.Next() {
		var t model.ShowingTemplate
		if err := scanTemplate(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *scheduleTx) ShowingsInHall(ctx context.Context, hallID uint64, from, to time.Time) ([]model.ShowingDetails, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT `+showingDetailColumns+showingDetailJoins+`
		 WHERE t.hall_id = ? AND t.date_starts <= ? AND t.date_ends >= ?
		 ORDER BY s.time_starts, s.id`,
		hallID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShowingDetails(rows)
}

func (s *scheduleTx) CreateTemplate(ctx context.Context, t *model.ShowingTemplate) error {
	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO showing_templates (film_id, hall_id, date_starts, date_ends, admin_id) VALUES (?,?,?,?,?)`,
		t.FilmID, t.HallID, t.DateStarts, t.DateEnds, t.AdminID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (s *scheduleTx) UpdateTemplateDates(ctx context.Context, t *model.ShowingTemplate) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE showing_templates SET date_starts=?, date_ends=?, admin_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		t.DateStarts, t.DateEnds, t.AdminID, t.ID)
	return err
}

func (s *scheduleTx) CreateShowing(ctx context.Context, sh *model.Showing) error {
	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO showings (template_id, time_starts, time_ends, time_hall_free, ads_duration, cleaning_duration,
		                       description, is_active, admin_id)
		 VALUES (?,?,?,?,?,?,?,0,?)`,
		sh.TemplateID, sh.TimeStarts, sh.TimeEnds, sh.TimeHallFree, sh.AdsDuration, sh.CleaningDuration,
		sh.Description, sh.AdminID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sh.ID = uint64(id)
	return nil
}

func (s *scheduleTx) UpdateShowing(ctx context.Context, sh *model.Showing) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE showings
		 SET time_starts=?, time_ends=?, time_hall_free=?, ads_duration=?, cleaning_duration=?,
		     description=?, admin_id=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		sh.TimeStarts, sh.TimeEnds, sh.TimeHallFree, sh.AdsDuration, sh.CleaningDuration,
		sh.Description, sh.AdminID, sh.ID)
	return err
}

func (s *scheduleTx) SoldTicketSlots(ctx context.Context, templateID uint64, from time.Time) ([]TicketSlot, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT tk.showing_id, tk.date_showing, s.time_starts
		 FROM tickets tk
		 JOIN showings s ON s.id = tk.showing_id
		 WHERE s.template_id = ? AND tk.date_showing >= ?`,
		templateID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TicketSlot
	for rows.Next() {
		var slot TicketSlot
		if err := rows.Scan(&slot.ShowingID, &slot.Date, &slot.TimeStarts); err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}
