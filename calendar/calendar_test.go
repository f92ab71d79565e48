package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func TestDateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-03-05", DateKey(2024, time.March, 5))
	assert.Equal(t, "2023-12-31", DateKey(2023, time.December, 31))
}

func TestMonthFebruaryNonLeap(t *testing.T) {
	t.Parallel()

	g := Month(2023, time.February, nil)

	assert.Equal(t, 3, g.Leading, "1 Feb 2023 is a Wednesday")
	require.Len(t, g.Days, 28)
	require.Len(t, g.Weeks, 5)

	for i := 0; i < 3; i++ {
		assert.True(t, g.Weeks[0].Cells[i].Blank())
	}
	assert.Equal(t, 1, g.Weeks[0].Cells[3].Day)
	assert.Equal(t, 28, g.Weeks[4].Cells[2].Day)
	for i := 3; i < 7; i++ {
		assert.True(t, g.Weeks[4].Cells[i].Blank())
	}

	for _, w := range g.Weeks {
		assert.False(t, w.Active)
		assert.Nil(t, w.Summary())
	}
	assert.Equal(t, 0.0, g.Total())
}

func TestMonthLeapFebruary(t *testing.T) {
	t.Parallel()

	g := Month(2024, time.February, nil)
	assert.Len(t, g.Days, 29)
	assert.Equal(t, 4, g.Leading)
}

func TestMonthSundayStart(t *testing.T) {
	t.Parallel()

	// September 2024 starts on a Sunday and fills exactly five rows.
	g := Month(2024, time.September, nil)
	assert.Equal(t, 0, g.Leading)
	assert.Len(t, g.Weeks, 5)
	assert.Equal(t, 1, g.Weeks[0].Cells[0].Day)
}

func TestMonthDailyPnL(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		{Date: "2024-03-04", Result: journal.ResultWin, PnL: 120},
		{Date: "2024-03-04", Result: journal.ResultLoss, PnL: -20},
		{Date: "2024-03-05", Result: journal.ResultBreakEven, PnL: 0},
		{Date: "2024-03-06", Result: journal.ResultPending, PnL: -15},
		{Date: "2024-04-01", Result: journal.ResultWin, PnL: 999},
	}

	g := Month(2024, time.March, trades)
	require.Len(t, g.Days, 31)

	d4 := g.Days[3]
	require.NotNil(t, d4.PnL)
	assert.Equal(t, 100.0, *d4.PnL)
	assert.Equal(t, 2, d4.Trades)

	d5 := g.Days[4]
	require.NotNil(t, d5.PnL, "a flat day still counts as traded")
	assert.Equal(t, 0.0, *d5.PnL)

	require.NotNil(t, g.Days[5].PnL)
	assert.Equal(t, -15.0, *g.Days[5].PnL)

	assert.Nil(t, g.Days[6].PnL)

	assert.Equal(t, 85.0, g.Total())
}

func TestMonthWeeks(t *testing.T) {
	t.Parallel()

	// March 2024: the 1st is a Friday, so the 3rd to 9th sit in the second row.
	trades := []journal.Trade{
		{Date: "2024-03-04", PnL: 50},
		{Date: "2024-03-08", PnL: -20},
		{Date: "2024-03-08", PnL: 5},
	}
	g := Month(2024, time.March, trades)

	require.Len(t, g.Weeks, 6)
	assert.False(t, g.Weeks[0].Active)
	assert.Nil(t, g.Weeks[0].Summary())

	w := g.Weeks[1]
	assert.True(t, w.Active)
	assert.Equal(t, 35.0, w.PnL)
	assert.Equal(t, &WeekSummary{PnL: 35, Trades: 3, Days: 2}, w.Summary())

	for _, other := range g.Weeks[2:] {
		assert.False(t, other.Active)
	}
}

func TestMonthOutOfRangeNormalises(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{{Date: "2025-01-02", PnL: 75}}
	g := Month(2024, 13, trades)

	assert.Equal(t, 2025, g.Year)
	assert.Equal(t, time.January, g.Month)
	require.Len(t, g.Days, 31)
	assert.Equal(t, "2025-01-01", g.Days[0].Date)
	require.NotNil(t, g.Days[1].PnL)
	assert.InDelta(t, 75.0, *g.Days[1].PnL, 1e-9)
	assert.InDelta(t, 75.0, g.Total(), 1e-9)
}

func TestStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year      int
		month     time.Month
		delta     int
		wantYear  int
		wantMonth time.Month
	}{
		{2024, time.March, 1, 2024, time.April},
		{2024, time.December, 1, 2025, time.January},
		{2024, time.January, -1, 2023, time.December},
		{2024, time.June, 0, 2024, time.June},
		{2024, time.June, -18, 2022, time.December},
		{2024, time.June, 30, 2026, time.December},
	}
	for _, tt := range tests {
		y, m := Step(tt.year, tt.month, tt.delta)
		assert.Equal(t, tt.wantYear, y)
		assert.Equal(t, tt.wantMonth, m)
	}
}
