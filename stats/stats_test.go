package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func trade(date string, r journal.Result, pnl, rr float64) journal.Trade {
	return journal.Trade{Date: date, Result: r, PnL: pnl, RR: rr}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		trades []journal.Trade
		want   Summary
	}{
		{
			name:   "no trades",
			trades: nil,
			want:   Summary{Equity: 10000},
		},
		{
			name:   "only pending",
			trades: []journal.Trade{trade("2024-01-01", journal.ResultPending, 500, 2)},
			want:   Summary{Equity: 10000, TradeCount: 1},
		},
		{
			name: "mixed",
			trades: []journal.Trade{
				trade("2024-01-01", journal.ResultWin, 200, 2),
				trade("2024-01-02", journal.ResultLoss, -100, 1),
				trade("2024-01-03", journal.ResultBreakEven, 0, 3),
				trade("2024-01-04", journal.ResultWin, 150, 2),
				trade("2024-01-05", journal.ResultPending, 999, 9),
			},
			want: Summary{
				WinRate: 50, NetPnL: 250, AvgRR: 2, Equity: 10250,
				TradeCount: 5, ClosedCount: 4, Wins: 2, Losses: 1, BreakEven: 1,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Summarize(tt.trades, 10000))
		})
	}
}

func TestSummarizeWinRateBounds(t *testing.T) {
	t.Parallel()

	all := Summarize([]journal.Trade{trade("d", journal.ResultWin, 1, 0), trade("d", journal.ResultWin, 1, 0)}, 0)
	assert.Equal(t, 100.0, all.WinRate)

	none := Summarize([]journal.Trade{trade("d", journal.ResultLoss, -1, 0)}, 0)
	assert.Equal(t, 0.0, none.WinRate)
}

func TestSummarizeDecimalSums(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		trade("d", journal.ResultWin, 0.1, 0),
		trade("d", journal.ResultWin, 0.2, 0),
	}
	s := Summarize(trades, 0)
	assert.Equal(t, 0.3, s.NetPnL)
}

func TestEquityCurve(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		{ID: "c", Date: "2024-01-03", Result: journal.ResultLoss, PnL: -50},
		{ID: "a", Date: "2024-01-01", Result: journal.ResultWin, PnL: 100},
		{ID: "p", Date: "2024-01-02", Result: journal.ResultPending, PnL: 0},
		{ID: "b", Date: "2024-01-01", Result: journal.ResultWin, PnL: 25},
	}

	curve := EquityCurve(trades, 1000)
	require.Len(t, curve, 5)
	assert.Equal(t, Point{Date: InitialLabel, Balance: 1000}, curve[0])
	assert.Equal(t, []Point{
		{Date: "Initial", Balance: 1000},
		{Date: "2024-01-01", Balance: 1100},
		{Date: "2024-01-01", Balance: 1125},
		{Date: "2024-01-02", Balance: 1125},
		{Date: "2024-01-03", Balance: 1075},
	}, curve)

	s := Summarize(trades, 1000)
	assert.Equal(t, s.Equity, curve[len(curve)-1].Balance)

	assert.Equal(t, "c", trades[0].ID, "input must not be reordered")
}

func TestEquityCurveEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Point{{Date: "Initial", Balance: 500}}, EquityCurve(nil, 500))
}

func TestClosed(t *testing.T) {
	t.Parallel()

	in := []journal.Trade{
		{ID: "1", Result: journal.ResultPending},
		{ID: "2", Result: journal.ResultBreakEven},
		{ID: "3", Result: journal.ResultLoss},
	}
	got := Closed(in)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
