package journal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/rustyeddy/tradejournal/risk"
)

// FormatTradeOrg renders a Trade as an Org-mode block. Structured fields go
// in the PROPERTIES drawer; the journal notes seed the Thesis section and
// Execution/Review are left for the trader to fill in.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s %s (%s)", t.Date, t.Symbol, t.Side, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ACCOUNT: %s\n", t.AccountID))
	if at, ok := id.Created(t.ID); ok {
		b.WriteString(fmt.Sprintf(":LOGGED: [%s]\n", at.Format("2006-01-02 Mon 15:04")))
	}
	b.WriteString(fmt.Sprintf(":DATE: %s\n", t.Date))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", t.Side))
	b.WriteString(fmt.Sprintf(":TIMEFRAME: %s\n", t.TimeFrame))
	b.WriteString(fmt.Sprintf(":SESSION: %s\n", t.Session))
	b.WriteString(fmt.Sprintf(":ENTRY_TYPE: %s\n", t.EntryType))
	b.WriteString(fmt.Sprintf(":LOT_SIZE: %.2f\n", t.LotSize))
	b.WriteString(fmt.Sprintf(":ENTRY: %.5f\n", t.Entry))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %.5f\n", t.StopLoss))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %.5f\n", t.TakeProfit))
	b.WriteString(fmt.Sprintf(":PLANNED_RISK: %.2f\n", risk.PlannedRisk(t.LotSize, t.Entry, t.StopLoss)))
	b.WriteString(fmt.Sprintf(":RR: %.2f\n", t.RR))
	b.WriteString(fmt.Sprintf(":RESULT: %s\n", t.Result))
	b.WriteString(fmt.Sprintf(":PNL: %.2f\n", t.PnL))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		for _, line := range strings.Split(notes, "\n") {
			b.WriteString("- " + strings.TrimSpace(line) + "\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("- \n\n")
	}
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
