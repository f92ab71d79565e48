package journal

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader is the column order written by WriteTradesCSV. Screenshots are
// omitted.
var CSVHeader = []string{
	"id", "account_id", "date", "symbol", "timeframe", "session", "entry_type", "side",
	"lot_size", "entry", "stop_loss", "take_profit", "result", "pnl", "rr", "notes",
}

// WriteTradesCSV writes a header row followed by one row per trade.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, t := range trades {
		err := cw.Write([]string{
			t.ID,
			t.AccountID,
			t.Date,
			t.Symbol,
			t.TimeFrame,
			string(t.Session),
			t.EntryType,
			string(t.Side),
			f(t.LotSize),
			f(t.Entry),
			f(t.StopLoss),
			f(t.TakeProfit),
			string(t.Result),
			f(t.PnL),
			strconv.FormatFloat(t.RR, 'f', 2, 64),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
