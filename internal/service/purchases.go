package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/model"
	"github.com/iliyamo/cinema-showtimes/internal/queue"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
)

// Purchases turns a session's ledger into tickets and debits the buyer.
type Purchases struct {
	baskets   *Baskets
	store     PurchaseStore
	tickets   TicketRepository
	users     UserRepository
	publisher EventPublisher
	settings
}

// NewPurchases builds a Purchases service. publisher may be nil, in which
// case no events are sent.
func NewPurchases(baskets *Baskets, store PurchaseStore, tickets TicketRepository, users UserRepository, publisher EventPublisher, opts ...Option) *Purchases {
	if baskets == nil || store == nil || tickets == nil || users == nil {
		panic("nil dependency passed to NewPurchases")
	}
	return &Purchases{
		baskets:   baskets,
		store:     store,
		tickets:   tickets,
		users:     users,
		publisher: publisher,
		settings:  newSettings(opts),
	}
}

// Receipt is the result of a committed purchase.
type Receipt struct {
	Purchase     model.Purchase  `json:"purchase"`
	Tickets      []model.Ticket  `json:"tickets"`
	TotalCharged decimal.Decimal `json:"total_charged"`
}

// Purchase buys every hold in the session's ledger for userID. Either all
// tickets are issued and the balance is debited by the sum of the
// snapshot prices, or nothing is written. The ledger is cleared after a
// successful purchase and when some of its seats turned out to be sold.
func (s *Purchases) Purchase(ctx context.Context, userID uint64, session string) (*Receipt, error) {
	l, err := s.baskets.load(ctx, session)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "session": session})
	if l.Expired(now, s.basketTTL) {
		if err := s.baskets.Clear(ctx, session); err != nil {
			log.WithError(err).Warn("failed to drop expired basket")
		}
		return nil, &PurchaseError{Reason: ReasonExpired}
	}
	if l.Empty() {
		return nil, &PurchaseError{Reason: ReasonEmpty}
	}

	holds := lockOrder(l.Items())
	total := l.Total()
	p := model.Purchase{
		PublicID:   uuid.NewString(),
		UserID:     userID,
		TotalPrice: total,
		CreatedAt:  now,
	}
	tickets := make([]model.Ticket, 0, len(holds))

	err = s.store.WithTx(ctx, func(tx repository.PurchaseTx) error {
		balance, err := tx.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance.LessThan(total) {
			return &PurchaseError{Reason: ReasonInsufficientFunds}
		}
		if sold, err := soldKeys(ctx, tx, holds); err != nil {
			return err
		} else if len(sold) > 0 {
			return &PurchaseError{Reason: ReasonSeatsSold, Seats: sold}
		}
		if err := tx.CreatePurchase(ctx, &p); err != nil {
			return err
		}
		for _, h := range holds {
			t := model.Ticket{
				PurchaseID: p.ID,
				ShowingID:  h.ShowingID,
				Date:       h.Date,
				SeatID:     h.SeatID,
				Price:      h.Price,
				CreatedAt:  now,
			}
			if err := tx.CreateTicket(ctx, &t); err != nil {
				if errors.Is(err, repository.ErrTicketExists) {
					return &PurchaseError{Reason: ReasonSeatsSold, Seats: []string{h.Key}}
				}
				return err
			}
			tickets = append(tickets, t)
		}
		return tx.Debit(ctx, userID, total)
	})
	if err != nil {
		var pe *PurchaseError
		if errors.As(err, &pe) && pe.Reason == ReasonSeatsSold {
			if cerr := s.baskets.Clear(ctx, session); cerr != nil {
				log.WithError(cerr).Warn("failed to clear basket")
			}
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user", userID)
		}
		if errors.Is(err, repository.ErrBalanceTooLow) {
			return nil, &PurchaseError{Reason: ReasonInsufficientFunds}
		}
		log.WithError(err).Info("purchase rejected")
		return nil, wrapTx("purchase", err)
	}

	if err := s.baskets.Clear(ctx, session); err != nil {
		log.WithError(err).Warn("failed to clear basket after purchase")
	}
	log.WithFields(logrus.Fields{
		"purchase_id": p.PublicID,
		"tickets":     len(tickets),
		"total":       total.String(),
	}).Info("purchase committed")
	s.publish(ctx, p, holds)

	return &Receipt{Purchase: p, Tickets: tickets, TotalCharged: total}, nil
}

// lockOrder sorts holds by showing, date and seat so that concurrent
// purchases acquire ticket key locks in the same order.
func lockOrder(holds []basket.Hold) []basket.Hold {
	sort.Slice(holds, func(i, j int) bool {
		a, b := holds[i], holds[j]
		if a.ShowingID != b.ShowingID {
			return a.ShowingID < b.ShowingID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.SeatID < b.SeatID
	})
	return holds
}

func soldKeys(ctx context.Context, tx repository.PurchaseTx, holds []basket.Hold) ([]string, error) {
	var sold []string
	for _, h := range holds {
		ok, err := tx.TicketExists(ctx, h.ShowingID, h.Date, h.SeatID)
		if err != nil {
			return nil, err
		}
		if ok {
			sold = append(sold, h.Key)
		}
	}
	return sold, nil
}

func (s *Purchases) publish(ctx context.Context, p model.Purchase, holds []basket.Hold) {
	if s.publisher == nil {
		return
	}
	ev := queue.PurchaseConfirmedEvent{
		EventID:     uuid.NewString(),
		PurchaseID:  p.PublicID,
		UserID:      p.UserID,
		Total:       p.TotalPrice,
		Tickets:     make([]queue.TicketLine, 0, len(holds)),
		ConfirmedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, h := range holds {
		ev.Tickets = append(ev.Tickets, queue.TicketLine{
			ShowingID: h.ShowingID,
			Date:      h.Date.Format(clock.DateLayout),
			SeatID:    h.SeatID,
			Row:       h.Row,
			Number:    h.Number,
			Price:     h.Price,
		})
	}
	if err := s.publisher.PublishPurchaseConfirmed(context.WithoutCancel(ctx), ev); err != nil {
		s.log.WithError(err).WithField("purchase_id", p.PublicID).Warn("purchase event not published")
	}
}

// History returns the user's tickets, newest first, with Active set for
// tickets that can still be used.
func (s *Purchases) History(ctx context.Context, userID uint64) ([]model.TicketDetails, error) {
	list, err := s.tickets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	today, now := s.today()
	for i := range list {
		list[i].Active = model.TicketActive(list[i].Date, list[i].TimeStarts, today, now)
	}
	return list, nil
}

// Account is a customer's wallet summary.
type Account struct {
	UserID     uint64          `json:"user_id"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	Balance    decimal.Decimal `json:"balance"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// Account returns the user's balance and how much they have spent.
func (s *Purchases) Account(ctx context.Context, userID uint64) (*Account, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	spent, err := s.users.TotalSpent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("total spent: %w", err)
	}
	return &Account{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		Balance:    u.Balance,
		TotalSpent: spent,
	}, nil
}
