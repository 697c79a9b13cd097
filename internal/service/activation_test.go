package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-showtimes/internal/clock"
)

func TestActivateShowingReportsMissingPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.activation()
	vip := f.db.addCategory("VIP")
	require.NoError(t, memSeats{f.db}.UpsertRange(ctx, f.hall.ID, vip.ID, 1, 3, 3))
	draft := f.addShowing(f.template.ID, clock.At(10, 0), false)
	f.setPrice(draft.ID, f.base.ID, "8")

	report, err := a.ActivateShowing(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.MissingCategories, 1)
	assert.Equal(t, "VIP", report.MissingCategories[0].Name)
	assert.Equal(t, []string{`there is no price for seat category "VIP"`}, report.Errors)
	assert.False(t, f.db.showings[draft.ID].IsActive)

	_, err = a.SetPrice(ctx, admin, draft.ID, vip.ID, decimal.RequireFromString("15"))
	require.NoError(t, err)

	report, err = a.ActivateShowing(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Empty(t, report.Errors)
	assert.True(t, f.db.showings[draft.ID].IsActive)

	// activating again is a no-op
	report, err = a.ActivateShowing(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.True(t, report.Success)
}

func TestActivateShowingCollectsEveryProblem(t *testing.T) {
	f := newFixture(t)
	draft := f.addShowing(f.template.ID, clock.At(10, 0), false)
	f.db.halls[f.hall.ID].IsActive = false
	f.db.films[f.film.ID].IsActive = false
	f.db.templates[f.template.ID].DateStarts = f.day(-5)
	f.db.templates[f.template.ID].DateEnds = f.day(-1)

	report, err := f.activation().ActivateShowing(context.Background(), admin, draft.ID)
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Equal(t, []string{
		"template date range ended on 2026-10-17",
		`hall "Red" is not active`,
		`film "Arrival" is not active`,
		`there is no price for seat category "base"`,
	}, report.Errors)
}

func TestActivateShowingUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.activation().ActivateShowing(context.Background(), admin, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.activation()

	_, err := a.SetPrice(ctx, admin, f.showing.ID, f.base.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = a.SetPrice(ctx, admin, f.showing.ID, f.base.ID, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = a.SetPrice(ctx, admin, 999, f.base.ID, decimal.RequireFromString("5"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = a.SetPrice(ctx, admin, f.showing.ID, 999, decimal.RequireFromString("5"))
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := a.SetPrice(ctx, admin, f.showing.ID, f.base.ID, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	stored, err := memPrices{f.db}.Get(ctx, f.showing.ID, f.base.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("12.5")))
}
