package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-showtimes/internal/model"
)

var (
	// ErrTicketExists is returned when a seat is already sold for the
	// showing and date.
	ErrTicketExists = errors.New("ticket already exists")
	// ErrBalanceTooLow is returned when a debit would make the balance
	// negative.
	ErrBalanceTooLow = errors.New("balance too low")
)

// PurchaseRepo runs purchases in a single transaction.
type PurchaseRepo struct{ db *sql.DB }

func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// WithTx runs fn in a transaction and commits only if fn returns nil.
func (r *PurchaseRepo) WithTx(ctx context.Context, fn func(tx PurchaseTx) error) error {
	return inTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		return fn(&purchaseTx{tx: tx})
	})
}

type purchaseTx struct{ tx *sql.Tx }

// LockBalance reads the buyer's balance with a row lock held until the
// transaction ends, so two purchases by one user are serialized.
func (p *purchaseTx) LockBalance(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	var b decimal.Decimal
	err := p.tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id=? FOR UPDATE`, userID).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrUserNotFound
	}
	return b, err
}

func (p *purchaseTx) CreatePurchase(ctx context.Context, pu *model.Purchase) error {
	res, err := p.tx.ExecContext(ctx,
		`INSERT INTO purchases (public_id, user_id, total_price, created_at) VALUES (?,?,?,?)`,
		pu.PublicID, pu.UserID, pu.TotalPrice, pu.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	pu.ID = uint64(id)
	return nil
}

func (p *purchaseTx) TicketExists(ctx context.Context, showingID uint64, date time.Time, seatID uint64) (bool, error) {
	return ticketExists(ctx, p.tx, showingID, date, seatID)
}

// CreateTicket inserts a ticket; the unique (showing, date, seat) key
// turns a concurrent sale of the same seat into ErrTicketExists. A buyer
// that loses a lock race on the same key is reported the same way.
func (p *purchaseTx) CreateTicket(ctx context.Context, t *model.Ticket) error {
	res, err := p.tx.ExecContext(ctx,
		`INSERT INTO tickets (purchase_id, showing_id, date_showing, seat_id, price, created_at) VALUES (?,?,?,?,?,?)`,
		t.PurchaseID, t.ShowingID, t.Date, t.SeatID, t.Price, t.CreatedAt.UTC())
	if err != nil {
		if isDuplicate(err) || isLockConflict(err) {
			return ErrTicketExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (p *purchaseTx) Debit(ctx context.Context, userID uint64, amount decimal.Decimal) error {
	res, err := p.tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?`,
		amount, userID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBalanceTooLow
	}
	return nil
}
