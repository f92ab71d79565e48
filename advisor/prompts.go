package advisor

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
)

const (
	critiqueSystem = "You are the Pseudo-Whale Mentor: a cold, strictly logical institutional veteran " +
		"with no patience for sloppy execution, emotional bias or missing discipline. Speak in sharp, " +
		"technical terms (SMC/ICT, institutional order flow) and push the trader toward a professional process."

	patternsSystem = "You are a high-performance trading psychologist. Extract behavioural alpha: the " +
		"patterns that separate this trader's winning mindset from the losing one. Go past labels such as " +
		"'greedy' and name the structural leaks in the decision process, for example scaling into losers " +
		"or tightening stops early after a losing streak."

	searchSystem = "You are a senior market analyst at a leading hedge fund. Synthesize the latest " +
		"high-signal intelligence from professional traders, institutional news and retail sentiment into " +
		"a short, action-oriented brief. Put smart-money flows and macro catalysts first."
)

const noNotes = "No psychological context provided."

func critiquePrompt(t journal.Trade) string {
	notes := t.Notes
	if notes == "" {
		notes = noNotes
	}

	var b strings.Builder
	b.WriteString("Review this trade as the lead risk manager of a quantitative prop firm.\n\n")
	b.WriteString("## Trade\n")
	fmt.Fprintf(&b, "- Asset: %s (%s)\n", t.Symbol, t.Side)
	fmt.Fprintf(&b, "- Result: %s | PnL: $%v\n", t.Result, t.PnL)
	fmt.Fprintf(&b, "- Strategy: %s | TF: %s\n", t.EntryType, t.TimeFrame)
	fmt.Fprintf(&b, "- Execution: entry %v, SL %v, TP %v\n", t.Entry, t.StopLoss, t.TakeProfit)
	fmt.Fprintf(&b, "- Risk: RR %v | lot size %v\n", t.RR, t.LotSize)
	fmt.Fprintf(&b, "- Notes: %q\n\n", notes)
	b.WriteString("## Deliver\n")
	fmt.Fprintf(&b, "1. Setup quality: judged against the %s model, was this an A+ setup or a low-conviction gamble? "+
		"Where charts are attached, check the technical confluence (liquidity, FVG, order blocks).\n", t.EntryType)
	b.WriteString("2. Exit efficiency: assess stop and target placement. Was money left on the table, " +
		"or did the exit meet structural exhaustion?\n")
	b.WriteString("3. Behaviour: read the notes for emotional triggers such as early-exit anxiety, " +
		"FOMO entries or oversizing.\n")
	b.WriteString("4. Verdict: grade the trade A to F and give 3 concrete technical or psychological drills " +
		"for the next 10 trades.\n")
	return b.String()
}

func patternsPrompt(trades []journal.Trade) string {
	entries := make([]string, len(trades))
	for i, t := range trades {
		sign := ""
		if t.PnL >= 0 {
			sign = "+"
		}
		entries[i] = fmt.Sprintf("[ID: %s]\nOUTCOME: %s (%s$%v)\nSYMBOL/SIDE: %s %s\nENTRY TYPE: %s\nJOURNAL NOTE: %s",
			t.ID, t.Result, sign, t.PnL, t.Symbol, t.Side, t.EntryType, t.Notes)
	}
	return "Audit the following trade journal for recurring cognitive biases, emotional triggers and " +
		"execution leaks hidden in the notes.\n\n## Journal\n" + strings.Join(entries, "\n---\n")
}

var themeSchema = &Schema{
	Type: "ARRAY",
	Items: &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"theme":          {Type: "STRING", Description: "Professional name for the behaviour, e.g. 'Premature De-risking' or 'Revenge Escalation'"},
			"description":    {Type: "STRING", Description: "What the pattern looks like, citing the notes without naming trade IDs"},
			"winCount":       {Type: "NUMBER", Description: "Wins associated with this mindset"},
			"lossCount":      {Type: "NUMBER", Description: "Losses associated with this mindset"},
			"totalPnL":       {Type: "NUMBER", Description: "Cumulative PnL impact"},
			"recommendation": {Type: "STRING", Description: "Protocol that mitigates or exploits the pattern"},
		},
		Required: []string{"theme", "description", "winCount", "lossCount", "totalPnL", "recommendation"},
	},
}
