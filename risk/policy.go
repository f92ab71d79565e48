package risk

// Policy is the trader's own rule book. A zero limit is not checked.
type Policy struct {
	// Risk limits, as fractions of equity (0.01 = 1%)
	MaxRiskPct float64 `json:"max_risk_pct" yaml:"max_risk_pct"`

	// Circuit breakers
	MaxDailyLossPct  float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxWeeklyLossPct float64 `json:"max_weekly_loss_pct" yaml:"max_weekly_loss_pct"`
	MaxTradesPerDay  int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`

	// Trade constraints
	MinRR float64 `json:"min_rr" yaml:"min_rr"`
}

// Enabled reports whether any rule is set.
func (p Policy) Enabled() bool {
	return p != Policy{}
}

// Intent is the planned shape of a trade.
type Intent struct {
	LotSize    float64
	Entry      float64
	Stop       float64
	TakeProfit float64
}

// Snapshot is the account state a trade was taken into. Realized figures
// cover the other closed trades of the same day and week.
type Snapshot struct {
	Equity       float64
	DayRealized  float64
	WeekRealized float64
	DayTrades    int
}
