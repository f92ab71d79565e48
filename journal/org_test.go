package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := Trade{
		ID:         "01HZX4K2M8ABCDEFGH",
		AccountID:  "default",
		Date:       "2024-03-15",
		Symbol:     "EUR/USD",
		TimeFrame:  "15m",
		Session:    SessionLondon,
		EntryType:  "Retest",
		Side:       SideLong,
		LotSize:    2,
		Entry:      1.085,
		StopLoss:   1.08,
		TakeProfit: 1.095,
		Result:     ResultWin,
		PnL:        250,
		RR:         2,
		Notes:      "clean retest of the Asian high\nwaited for the close",
	}

	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Trade: 2024-03-15 EUR/USD Long (01HZX4K2)")

	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":ID: 01HZX4K2M8ABCDEFGH")
	assert.Contains(t, result, ":ACCOUNT: default")
	assert.Contains(t, result, ":SESSION: London")
	assert.Contains(t, result, ":ENTRY_TYPE: Retest")
	assert.Contains(t, result, ":LOT_SIZE: 2.00")
	assert.Contains(t, result, ":ENTRY: 1.08500")
	assert.Contains(t, result, ":STOP_LOSS: 1.08000")
	assert.Contains(t, result, ":TAKE_PROFIT: 1.09500")
	assert.Contains(t, result, ":PLANNED_RISK: 0.01")
	assert.Contains(t, result, ":RR: 2.00")
	assert.Contains(t, result, ":RESULT: Win")
	assert.Contains(t, result, ":PNL: 250.00")
	assert.Contains(t, result, ":END:")

	assert.Contains(t, result, "*** Thesis\n- clean retest of the Asian high\n- waited for the close\n")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgEmptyNotes(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(Trade{ID: "abc", Date: "2024-01-01", Symbol: "NQ", Side: SideShort})

	assert.Contains(t, result, "** Trade: 2024-01-01 NQ Short (abc)")
	assert.Contains(t, result, "*** Thesis\n- \n")
	assert.NotContains(t, result, ":LOGGED:")
}

func TestFormatTradeOrgLogged(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(Trade{ID: id.New(), Date: "2024-01-01", Symbol: "NQ"})
	assert.Contains(t, result, ":LOGGED: [")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	trades := []Trade{
		{ID: "first-trade-id", Date: "2024-01-01", Symbol: "EUR/USD", Side: SideLong},
		{ID: "second-trade-id", Date: "2024-01-02", Symbol: "GBP/USD", Side: SideShort},
	}

	result := FormatTradesOrg(trades)

	assert.Contains(t, result, "(first-tr)")
	assert.Contains(t, result, "(second-t)")
	require.Equal(t, 2, strings.Count(result, "** Trade:"))
	assert.Contains(t, result, "- \n\n\n** Trade: 2024-01-02")
}

func TestShortID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"12345678", "12345678"},
		{"123456789", "12345678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shortID(tt.in))
	}
}
