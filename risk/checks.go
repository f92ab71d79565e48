package risk

import "fmt"

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations"`

	PlannedRisk    float64 `json:"plannedRisk"`
	PlannedRiskPct float64 `json:"plannedRiskPct"`
	PlannedRR      float64 `json:"plannedRr"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// RiskPct is risk as a fraction of equity, 0 when equity is not positive.
func RiskPct(risk, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return risk / equity
}

// Evaluate checks a trade against the policy. Rules left at zero are
// skipped; a trade without entry or stop cannot be measured and fails.
func Evaluate(p Policy, intent Intent, snap Snapshot) Decision {
	d := Decision{Allowed: true, Violations: []Violation{}}

	if intent.Stop == 0 || intent.Entry == 0 {
		d.add("NO_STOP_OR_ENTRY", "entry/stop must be set")
		return d
	}

	d.PlannedRisk = PlannedRisk(intent.LotSize, intent.Entry, intent.Stop)
	d.PlannedRiskPct = RiskPct(d.PlannedRisk, snap.Equity)
	d.PlannedRR = RoundedRR(intent.Entry, intent.Stop, intent.TakeProfit)

	if p.MaxRiskPct > 0 && d.PlannedRiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%",
				100*d.PlannedRiskPct, 100*p.MaxRiskPct))
	}
	if p.MinRR > 0 && d.PlannedRR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}
	if p.MaxTradesPerDay > 0 && snap.DayTrades >= p.MaxTradesPerDay {
		d.add("TOO_MANY_TRADES",
			fmt.Sprintf("%d trades already taken that day (max %d)", snap.DayTrades, p.MaxTradesPerDay))
	}

	// Circuit breakers (loss limits)
	if p.MaxDailyLossPct > 0 {
		limit := -p.MaxDailyLossPct * snap.Equity
		if snap.DayRealized <= limit {
			d.add("DAILY_LOSS_LIMIT", fmt.Sprintf("day realized %.2f <= limit %.2f", snap.DayRealized, limit))
		}
	}
	if p.MaxWeeklyLossPct > 0 {
		limit := -p.MaxWeeklyLossPct * snap.Equity
		if snap.WeekRealized <= limit {
			d.add("WEEKLY_LOSS_LIMIT", fmt.Sprintf("week realized %.2f <= limit %.2f", snap.WeekRealized, limit))
		}
	}

	return d
}
