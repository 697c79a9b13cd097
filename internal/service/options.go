package service

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

// Defaults applied when the corresponding option is not given.
const (
	DefaultTemplateSpanDays = 15
)

var (
	DefaultAdsDuration      = clock.Duration{Minutes: 10}
	DefaultCleaningDuration = clock.Duration{Minutes: 10}
)

type settings struct {
	clock        clock.Clock
	log          logrus.FieldLogger
	basketTTL    time.Duration
	templateSpan int
	ads          clock.Duration
	cleaning     clock.Duration
}

// Option configures a service.
type Option func(*settings)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithLogger sets the logger services write to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) { s.log = l }
}

// WithBasketTTL sets the ledger lifetime.
func WithBasketTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.basketTTL = d
		}
	}
}

// WithTemplateSpan sets the number of days a template runs when no end
// date is given.
func WithTemplateSpan(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.templateSpan = days
		}
	}
}

// WithShowingDefaults sets the advertisement and cleaning blocks used when
// a showing is scheduled without them.
func WithShowingDefaults(ads, cleaning clock.Duration) Option {
	return func(s *settings) {
		s.ads = ads
		s.cleaning = cleaning
	}
}

func newSettings(opts []Option) settings {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := settings{
		clock:        clock.System{},
		log:          discard,
		basketTTL:    basket.DefaultTTL,
		templateSpan: DefaultTemplateSpanDays,
		ads:          DefaultAdsDuration,
		cleaning:     DefaultCleaningDuration,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// today returns the current calendar date and clock reading.
func (s settings) today() (time.Time, clock.TimeOfDay) {
	now := s.clock.Now()
	return clock.DateOf(now), clock.TimeOf(now)
}
